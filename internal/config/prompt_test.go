package config

import (
	"path/filepath"
	"testing"
)

const validPromptYAML = `
code_generation: "Rewrite: $CODE$ in $LANGUAGE$ matching $SIGNATURE$"
codejudge_analyse: "Analyse whether $PROBLEM$ is solved by: $CODE$"
codejudge_summarise: "Summarise: $ANALYSIS$"
description_generation: "Describe this $LANGUAGE$ method: $CODE$"
`

func TestLoadPromptValid(t *testing.T) {
	path := writeTempFile(t, "prompts.yaml", validPromptYAML)
	p, err := LoadPrompt(path)
	if err != nil {
		t.Fatalf("LoadPrompt returned error: %v", err)
	}
	if p.CodeGeneration == "" {
		t.Error("expected CodeGeneration to be populated")
	}
}

func TestLoadPromptRejectsEmptyValue(t *testing.T) {
	path := writeTempFile(t, "prompts.yaml", `
code_generation: ""
codejudge_analyse: "x"
codejudge_summarise: "x"
description_generation: "x"
`)
	if _, err := LoadPrompt(path); err == nil {
		t.Fatal("expected LoadPrompt to reject an empty template")
	}
}

func TestLoadPromptRejectsExtraKey(t *testing.T) {
	path := writeTempFile(t, "prompts.yaml", validPromptYAML+"\nextra_template: \"x\"\n")
	if _, err := LoadPrompt(path); err == nil {
		t.Fatal("expected LoadPrompt to reject an unrecognized key")
	}
}

func TestFillReplacesLiteralPlaceholders(t *testing.T) {
	template := "Rewrite $CODE$ in $LANGUAGE$"
	got := Fill(template, map[string]string{
		"$CODE$":     "def f(): pass",
		"$LANGUAGE$": "python",
	})
	want := "Rewrite def f(): pass in python"
	if got != want {
		t.Errorf("Fill = %q, want %q", got, want)
	}
}

func TestFillLeavesUnreplacedPlaceholdersAlone(t *testing.T) {
	got := Fill("$CODE$ and $SIGNATURE$", map[string]string{"$CODE$": "x"})
	want := "x and $SIGNATURE$"
	if got != want {
		t.Errorf("Fill = %q, want %q", got, want)
	}
}

func TestPathIsNextToExecutable(t *testing.T) {
	path, err := Path()
	if err != nil {
		t.Fatalf("Path returned error: %v", err)
	}
	if filepath.Base(path) != FileName {
		t.Errorf("Path() = %q, want basename %q", path, FileName)
	}
}

func TestPromptPathIsNextToExecutable(t *testing.T) {
	path, err := PromptPath()
	if err != nil {
		t.Fatalf("PromptPath returned error: %v", err)
	}
	if filepath.Base(path) != PromptFileName {
		t.Errorf("PromptPath() = %q, want basename %q", path, PromptFileName)
	}
}

package quiz

import "testing"

func TestParseQuestionType(t *testing.T) {
	if typ, err := ParseQuestionType(""); err != nil || typ != MultipleChoice {
		t.Errorf("empty: got %q, %v, want multiple_choice", typ, err)
	}
	for _, s := range []string{"multiple_choice", "true_false", "open_ended"} {
		if typ, err := ParseQuestionType(s); err != nil || string(typ) != s {
			t.Errorf("ParseQuestionType(%q) = %q, %v", s, typ, err)
		}
	}
	if _, err := ParseQuestionType("matching"); err == nil {
		t.Error("expected error for unknown question type")
	}
}

func TestParseDifficulty(t *testing.T) {
	if d, err := ParseDifficulty(""); err != nil || d != Medium {
		t.Errorf("empty: got %q, %v, want medium", d, err)
	}
	if _, err := ParseDifficulty("impossible"); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}

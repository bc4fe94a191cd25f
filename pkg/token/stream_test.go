package token

import (
	"strings"
	"testing"
)

func mustStream(t *testing.T, input string) *Stream {
	t.Helper()
	s, err := Parse("test", input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return s
}

func TestStreamCursor(t *testing.T) {
	s := mustStream(t, "a 1 b")

	if s.Len() != 3 || s.Remaining() != 3 {
		t.Fatalf("Expected 3 tokens, got len %d remaining %d", s.Len(), s.Remaining())
	}
	if p := s.Peek(); p.Text != "a" {
		t.Errorf("Expected peek a, got %s", p)
	}
	first := s.Next()
	if first.Text != "a" || s.Remaining() != 2 {
		t.Errorf("Expected a with 2 remaining, got %s with %d", first, s.Remaining())
	}

	if err := s.PushBack(first); err != nil {
		t.Fatalf("PushBack: %v", err)
	}
	if err := s.PushBack(first); err == nil {
		t.Error("Expected a second PushBack to fail")
	}
	if s.Remaining() != 3 {
		t.Errorf("Expected 3 remaining after push back, got %d", s.Remaining())
	}
	if again := s.Next(); again.Text != "a" {
		t.Errorf("Expected pushed back a, got %s", again)
	}

	s.Next()
	s.Next()
	if !s.EOF() || s.Bad() {
		t.Error("Expected EOF without a failed read")
	}
	if end := s.Next(); end.Kind != KindUndefined {
		t.Errorf("Expected undefined token past the end, got %s", end)
	}
	if !s.Bad() || s.Good() {
		t.Error("Expected bad state after reading past the end")
	}

	s.Rewind()
	if !s.Good() || s.Remaining() != 3 {
		t.Error("Expected a good stream after rewind")
	}
}

func TestStreamReaders(t *testing.T) {
	s := mustStream(t, `42 1.5 7 word "quoted text" yes off 1`)

	if v, err := s.ReadInt(); err != nil || v != 42 {
		t.Errorf("ReadInt = %d, %v", v, err)
	}
	if v, err := s.ReadFloat(); err != nil || v != 1.5 {
		t.Errorf("ReadFloat = %v, %v", v, err)
	}
	if v, err := s.ReadFloat(); err != nil || v != 7 {
		t.Errorf("ReadFloat of integer = %v, %v", v, err)
	}
	if v, err := s.ReadWord(); err != nil || v != "word" {
		t.Errorf("ReadWord = %q, %v", v, err)
	}
	if v, err := s.ReadString(); err != nil || v != "quoted text" {
		t.Errorf("ReadString = %q, %v", v, err)
	}
	for _, want := range []bool{true, false, true} {
		if v, err := s.ReadBool(); err != nil || v != want {
			t.Errorf("ReadBool = %v, %v; want %v", v, err, want)
		}
	}

	if _, err := s.ReadInt(); err == nil {
		t.Error("Expected ReadInt at end of stream to fail")
	} else if !strings.Contains(err.Error(), "end of input") {
		t.Errorf("Expected end of input error, got %v", err)
	}
}

func TestStreamReaderMismatch(t *testing.T) {
	s := mustStream(t, "\n\nword")
	_, err := s.ReadInt()
	if err == nil {
		t.Fatal("Expected an error")
	}
	ue, ok := err.(*UnexpectedError)
	if !ok {
		t.Fatalf("Expected *UnexpectedError, got %T", err)
	}
	if ue.Found.Text != "word" || ue.Found.Line != 3 {
		t.Errorf("Unexpected found token %s at line %d", ue.Found, ue.Found.Line)
	}
	if !strings.Contains(err.Error(), "line 3") {
		t.Errorf("Expected line in message, got %q", err.Error())
	}
}

func TestReadCompound(t *testing.T) {
	s := mustStream(t, "(1 (2 3) x) 2(a b) 3(1 2)")

	list, err := s.ReadCompound()
	if err != nil {
		t.Fatalf("ReadCompound: %v", err)
	}
	if len(list.Items) != 3 || list.Items[1].Kind != KindCompound || len(list.Items[1].Items) != 2 {
		t.Errorf("Unexpected nesting: %s", list)
	}
	if list.Render() != "(1 (2 3) x)" {
		t.Errorf("Unexpected render %q", list.Render())
	}

	sized, err := s.ReadCompound()
	if err != nil || len(sized.Items) != 2 {
		t.Errorf("Expected sized list of 2, got %s, %v", sized, err)
	}

	if _, err := s.ReadCompound(); err == nil {
		t.Error("Expected size mismatch error")
	}

	if _, err := mustStream(t, "(1 2").ReadCompound(); err == nil {
		t.Error("Expected unterminated list error")
	}
}

func TestParseReportsTokenizerErrors(t *testing.T) {
	_, err := Parse("broken", "a 1;\nb \"open")
	if err == nil {
		t.Fatal("Expected an error")
	}
	if !strings.Contains(err.Error(), "broken") || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("Expected stream name and line, got %q", err.Error())
	}
}

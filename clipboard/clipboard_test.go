package clipboard

import "testing"

func TestCopyPaste(t *testing.T) {
	var c Clipboard

	if got := c.Paste(); got != nil {
		t.Fatalf("Paste on empty clipboard = %q, want nil", got)
	}

	c.Copy([]byte("hello"))
	if got := string(c.Paste()); got != "hello" {
		t.Fatalf("Paste() = %q, want hello", got)
	}

	c.Copy([]byte("world"))
	if got := string(c.Paste()); got != "world" {
		t.Fatalf("Paste() after second copy = %q, want world", got)
	}

	c.Clear()
	if got := c.Paste(); got != nil {
		t.Fatalf("Paste() after Clear = %q, want nil", got)
	}
}

func TestCopyIsolatesCaller(t *testing.T) {
	var c Clipboard

	src := []byte("abc")
	c.Copy(src)
	src[0] = 'X'

	if got := string(c.Paste()); got != "abc" {
		t.Fatalf("Paste() = %q, want abc (copy must not alias caller slice)", got)
	}
}

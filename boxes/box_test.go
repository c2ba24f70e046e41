package boxes

import "testing"

func TestTypeString(t *testing.T) {
	r := Record{Type: [4]byte{'j', 'x', 'l', 'l'}}
	if r.TypeString() != "jxll" {
		t.Fatalf("got %q, want jxll", r.TypeString())
	}
}

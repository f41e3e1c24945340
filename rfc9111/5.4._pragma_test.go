package rfc9111

import "testing"

func TestNeedsPragma(t *testing.T) {
	if !NeedsPragma(1, 0) {
		t.Fatal("HTTP/1.0 needs Pragma")
	}
	if NeedsPragma(1, 1) || NeedsPragma(2, 0) || NeedsPragma(0, 9) {
		t.Fatal("Only HTTP/1.0 needs Pragma")
	}
}

package apdu

import (
	"strings"
	"testing"
)

func TestStatusWord_Bytes(t *testing.T) {
	sw := NewStatusWord(0x6E, 0x01)
	if sw != SW_ERR_APP_NOT_RUNNING {
		t.Fatalf("NewStatusWord(6E, 01) = %04X", uint16(sw))
	}
	if sw.SW1() != 0x6E || sw.SW2() != 0x01 {
		t.Errorf("SW1/SW2 = %02X/%02X", sw.SW1(), sw.SW2())
	}
	if sw.IsSuccess() || !SW_NO_ERROR.IsSuccess() {
		t.Error("only 9000 is a success")
	}
}

func TestStatusWord_Verbose(t *testing.T) {
	tests := []struct {
		sw       StatusWord
		contains string
	}{
		{SW_NO_ERROR, "[9000] SW_NO_ERROR"},
		{SW_DEVICE_LOCKED, "SW_DEVICE_LOCKED"},
		{NewStatusWord(0x6A, 0x99), "Wrong parameters"},
		{NewStatusWord(0x12, 0x34), "[1234] Unknown Status"},
	}

	for _, tt := range tests {
		got := tt.sw.Verbose()
		if !strings.Contains(got, tt.contains) {
			t.Errorf("Verbose(%X) = %q; want containing %q", uint16(tt.sw), got, tt.contains)
		}
	}

	if got := NewStatusWord(0x12, 0x34).String(); got != "StatusWord(0x1234)" {
		t.Errorf("String() = %q", got)
	}
}

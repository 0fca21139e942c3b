package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattersKeepMessage(t *testing.T) {
	formatters := map[string]func(string) string{
		"Success":     Success,
		"Warn":        Warn,
		"Err":         Err,
		"Info":        Info,
		"Hint":        Hint,
		"Addr":        Addr,
		"Val":         Val,
		"Meta":        Meta,
		"NetworkName": NetworkName,
	}
	for name, fn := range formatters {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test", "%s should contain the input message", name)
		})
	}
}

func TestFormatterPrefixes(t *testing.T) {
	assert.Contains(t, Success("done"), "✓")
	assert.Contains(t, Warn("careful"), "⚠")
	assert.Contains(t, Err("failed"), "✗")
	assert.Contains(t, Info("note"), "ℹ")
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestButtonLabel(t *testing.T) {
	assert.Contains(t, Button("t", "Transfer", true), "[ t ] Transfer")
	assert.Contains(t, Button("t", "Submitting…", false), "[ t ] Submitting…")
}

func TestBannerMentionsName(t *testing.T) {
	assert.Contains(t, Banner(), "w3stark")
}

func TestTruncateAddrShort(t *testing.T) {
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "", TruncateAddr(""))
}

func TestTruncateAddrFelt(t *testing.T) {
	addr := "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	assert.Equal(t, "0x049d…4dc7", TruncateAddr(addr))
}

func TestSpinnerFrameWraps(t *testing.T) {
	assert.Equal(t, SpinnerFrame(0), SpinnerFrame(len(spinnerFrames)))
	assert.NotEqual(t, SpinnerFrame(0), SpinnerFrame(1))
}

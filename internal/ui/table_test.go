package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "0x5aAe…BeAed",
		TruncateAddr("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
}

func TestSpinnerFrameWraps(t *testing.T) {
	assert.Equal(t, SpinnerFrame(0), SpinnerFrame(len(spinnerFrames)))
	assert.NotEmpty(t, SpinnerFrame(3))
}

func TestTableRenderColumns(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Token", Width: 6},
		{Title: "Amount", Width: 10},
	})
	tbl.AddRow("DAI", "100")
	tbl.AddRow("USDC", "25.5")

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4) // header, divider, two rows
	assert.Contains(t, out, "Token")
	assert.Contains(t, out, "DAI")
	assert.Contains(t, out, "25.5")
}

func TestTableTruncatesOverflow(t *testing.T) {
	tbl := NewTable([]Column{{Title: "A", Width: 4}})
	tbl.AddRow("overflowing")

	assert.Contains(t, tbl.Render(), "over")
	assert.NotContains(t, tbl.Render(), "overflowing")
}

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Allowance", [][2]string{
		{"Owner", "0xabc"},
		{"Amount", "500 USDC"},
	})
	assert.Contains(t, out, "Allowance")
	assert.Contains(t, out, "500 USDC")
}

package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNumberSourceFormatAndSequence(t *testing.T) {
	n := newNumberSource()
	today := time.Now().Format("060102")

	assert.Equal(t, "RC"+today+"0001", n.Next("RC"))
	assert.Equal(t, "RC"+today+"0002", n.Next("RC"))
	assert.Equal(t, "OB"+today+"0001", n.Next("OB"), "prefixes count independently")
}

func TestNumberSourceRestore(t *testing.T) {
	n := newNumberSource()
	today := time.Now().Format("060102")

	n.Restore("RC", fmt.Sprintf("RC%s%04d", today, 41))
	assert.Equal(t, "RC"+today+"0042", n.Next("RC"))

	// a number from another day is ignored
	n2 := newNumberSource()
	n2.Restore("RC", "RC0001019999")
	assert.Equal(t, "RC"+today+"0001", n2.Next("RC"))
}

package keymap

import (
	"math"
	"strconv"
)

// DefaultMaxCount caps the numeric value of a count register.
const DefaultMaxCount = 10000

// maxCountDigits stops digit accumulation well before int overflow.
const maxCountDigits = 18

// CountRegister holds the decimal repeat count of one mode.
// Its text defaults to "1".
type CountRegister struct {
	digits string
	value  int
	max    int
}

// NewCountRegister creates a register whose numeric value is clamped to
// limit. A limit of zero or less disables the clamp.
func NewCountRegister(limit int) *CountRegister {
	c := &CountRegister{max: limit}
	c.Reset()
	return c
}

// Reset reinitializes the register to "1".
func (c *CountRegister) Reset() {
	c.digits = "1"
	c.value = 1
}

// Seed replaces the register with a single digit.
func (c *CountRegister) Seed(d int) {
	c.digits = strconv.Itoa(d)
	c.value = d
}

// Append adds a digit to the right of the register.
func (c *CountRegister) Append(d int) {
	if len(c.digits) >= maxCountDigits {
		return
	}
	c.digits += strconv.Itoa(d)

	// Guard against integer overflow
	if c.value > (math.MaxInt-d)/10 {
		c.value = math.MaxInt
		return
	}
	c.value = c.value*10 + d
}

// String returns the register text, e.g. "1" or "42".
func (c *CountRegister) String() string {
	return c.digits
}

// Value returns the count, clamped to the register maximum.
func (c *CountRegister) Value() int {
	if c.max > 0 && c.value > c.max {
		return c.max
	}
	if c.value < 1 {
		return 1
	}
	return c.value
}

// Max returns the clamp applied by Value.
func (c *CountRegister) Max() int {
	return c.max
}

// SetMax changes the clamp applied by Value.
func (c *CountRegister) SetMax(limit int) {
	c.max = limit
}

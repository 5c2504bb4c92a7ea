package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressTypeValid(t *testing.T) {
	assert.True(t, AddressTypePrimary.Valid())
	assert.True(t, AddressTypeSecondary.Valid())
	assert.False(t, AddressType("BILLING").Valid())
}

func TestAddressLines(t *testing.T) {
	a := Address{Street: "1 Main St", City: "Springfield", State: "IL", ZipCode: "62701", Country: "USA"}
	assert.Equal(t, []string{"1 Main St", "62701 Springfield, IL", "USA"}, a.Lines())

	a.State = ""
	assert.Equal(t, "62701 Springfield", a.Lines()[1])
}

package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func validForm() map[string]string {
	return map[string]string{
		"code":        "A1",
		"name":        " Widget ",
		"description": "Small metal widget",
		"category":    "Tools",
		"quantity":    " 5 ",
		"unit_price":  "2.50",
		"location":    "Shelf 3",
		"supplier":    "ACME",
	}
}

func TestParseProductForm(t *testing.T) {
	in, raw, err := ParseProductForm(lookupFrom(validForm()))
	require.NoError(t, err)

	assert.Equal(t, widget(), in)
	assert.Equal(t, " Widget ", raw["name"], "raw values are kept for re-rendering")
}

func TestParseProductFormNumbers(t *testing.T) {
	cases := []struct {
		quantity  string
		price     string
		wantQty   int
		wantPrice float64
	}{
		{"0", "0", 0, 0},
		{"-4", "-1.25", -4, -1.25},
		{"12", "3,75", 12, 3.75},
		{"7", "1e2", 7, 100},
	}
	for _, tc := range cases {
		form := validForm()
		form["quantity"] = tc.quantity
		form["unit_price"] = tc.price

		in, _, err := ParseProductForm(lookupFrom(form))
		require.NoError(t, err, "%s / %s", tc.quantity, tc.price)
		assert.Equal(t, tc.wantQty, in.Quantity)
		assert.Equal(t, tc.wantPrice, in.UnitPrice)
	}
}

func TestParseProductFormRejects(t *testing.T) {
	cases := []struct {
		name      string
		field     string
		value     string
		drop      bool
		wantField string
	}{
		{"missing name", "name", "", true, "name"},
		{"missing quantity", "quantity", "", true, "quantity"},
		{"empty quantity", "quantity", "", false, "quantity"},
		{"decimal quantity", "quantity", "5.0", false, "quantity"},
		{"text quantity", "quantity", "cinco", false, "quantity"},
		{"text price", "unit_price", "dos", false, "unit_price"},
		{"empty price", "unit_price", "", false, "unit_price"},
		{"nan price", "unit_price", "NaN", false, "unit_price"},
		{"inf price", "unit_price", "Inf", false, "unit_price"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := validForm()
			if tc.drop {
				delete(form, tc.field)
			} else {
				form[tc.field] = tc.value
			}

			_, _, err := ParseProductForm(lookupFrom(form))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.wantField, ve.Field)
		})
	}
}

func TestParseProductFormEmptyTextIsAllowed(t *testing.T) {
	form := validForm()
	form["description"] = ""
	form["supplier"] = ""

	in, _, err := ParseProductForm(lookupFrom(form))
	require.NoError(t, err)
	assert.Empty(t, in.Description)
	assert.Empty(t, in.Supplier)
}

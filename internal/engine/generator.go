package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/Sergiu-D/dataforge/internal/schema"
)

// Dates and datetimes are drawn from this fixed window.
var (
	dateWindowStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	dateWindowEnd   = time.Date(2030, 12, 31, 23, 59, 59, 0, time.UTC)
)

const (
	dateLayout     = "2006-01-02"
	datetimeLayout = "2006-01-02 15:04:05"
)

// fakeValue generates one cell for field at 0-based row index i.
func fakeValue(f *gofakeit.Faker, field schema.Field, i int) string {
	switch field.TypeID {
	case "first_name":
		return f.FirstName()
	case "last_name":
		return f.LastName()
	case "full_name":
		return f.Name()
	case "email":
		return f.Email()
	case "phone":
		return f.Phone()
	case "address":
		return f.Address().Address
	case "city":
		return f.City()
	case "state":
		return f.State()
	case "country":
		return f.Country()
	case "zip_code":
		return f.Zip()
	case "company":
		return f.Company()
	case "job_title":
		return f.JobTitle()

	case "number":
		lo, hi := 1, 100
		if r, ok := field.Options.(schema.RangeOptions); ok {
			lo, hi = r.IntBounds(1, 100)
		}
		if hi < lo {
			hi = lo
		}
		return strconv.Itoa(f.IntRange(lo, hi))

	case "decimal":
		lo, hi := 0.0, 100.0
		if r, ok := field.Options.(schema.RangeOptions); ok {
			lo, hi = r.Bounds(0, 100)
		}
		if hi < lo {
			hi = lo
		}
		return formatDecimal(f.Float64Range(lo, hi), lo, hi)

	case "boolean":
		return strconv.FormatBool(f.Bool())
	case "date":
		return f.DateRange(dateWindowStart, dateWindowEnd).Format(dateLayout)
	case "datetime":
		return f.DateRange(dateWindowStart, dateWindowEnd).Format(datetimeLayout)
	case "uuid":
		return f.UUID()
	case "username":
		return f.Username()
	case "password":
		return f.Password(true, true, true, true, false, 12)
	case "url":
		return f.URL()
	case "ip_address":
		return f.IPv4Address()
	case "credit_card":
		return f.CreditCardNumber(nil)
	case "color":
		return f.HexColor()

	case "lorem_ipsum":
		n := schema.DefaultWordCount
		if w, ok := field.Options.(schema.WordCountOptions); ok {
			n = w.Words()
		}
		words := make([]string, n)
		for k := range words {
			words[k] = strings.ToLower(f.LoremIpsumWord())
		}
		return strings.Join(words, " ")

	case "custom_list":
		if v, ok := field.Options.(schema.ValueListOptions); ok && len(v.Values) > 0 {
			return f.RandomString(v.Values)
		}
		return fmt.Sprintf("Value%d", i+1)

	default:
		return f.Word()
	}
}

// formatDecimal renders v with 2 decimals, rounding inward so the printed value stays in [lo, hi].
func formatDecimal(v, lo, hi float64) string {
	r := math.Round(v*100) / 100
	if r < lo {
		r = math.Ceil(lo*100) / 100
	}
	if r > hi {
		r = math.Floor(hi*100) / 100
	}
	return strconv.FormatFloat(r, 'f', 2, 64)
}

package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/YuminosukeSato/carprep/pkg/errors"
)

// ParseFloats は文字列の列を数値に変換する。欠損値はNaNになる。
func ParseFloats(s series.Series) ([]float64, error) {
	records := s.Records()
	missing := s.IsNaN()
	values := make([]float64, len(records))
	for i, rec := range records {
		if missing[i] {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec), 64)
		if err != nil {
			return nil, errors.NewValueError("ParseFloats",
				fmt.Sprintf("could not convert %q to float in column '%s' (row %d)", rec, s.Name, i))
		}
		values[i] = v
	}
	return values, nil
}

// Strings は文字列の列を返す。欠損値は空文字列になる。
func Strings(s series.Series) []string {
	records := s.Records()
	missing := s.IsNaN()
	for i := range records {
		if missing[i] {
			records[i] = ""
		} else {
			records[i] = strings.TrimSpace(records[i])
		}
	}
	return records
}

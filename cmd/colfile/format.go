package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/types"
)

const nullValue = "NULL"

// formatValue prints a column value, nil being null.
func formatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return nullValue
	case string:
		return t
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339Nano)
	}

	return fmt.Sprint(v)
}

// formatStat prints a statistics bound in the column type.
func formatStat(col *schema.Column, b []byte) string {
	if b == nil {
		return ""
	}

	v, err := types.DecodeStatValue(col.Type(), b)
	if err != nil {
		return "invalid: " + err.Error()
	}

	if v, err = col.FromPhysical(v); err != nil {
		return "invalid: " + err.Error()
	}

	return formatValue(v)
}

func encodingNames(encodings []format.Encoding) []string {
	ret := make([]string, len(encodings))
	for i, e := range encodings {
		ret[i] = e.String()
	}

	return ret
}

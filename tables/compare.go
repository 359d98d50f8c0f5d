package tables

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-tables/export"
)

const (
	rankNil = iota
	rankBool
	rankNumber
	rankTime
	rankString
	rankOther
)

// compareValues orders values for in-memory sorting. nil sorts first; values
// of different kinds compare by kind (bool, number, time, string, other).
func compareValues(a, b any) int {
	ra, rb := valueRank(a), valueRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNil:
		return 0
	case rankBool:
		ab, _ := export.CoerceBool(a)
		bb, _ := export.CoerceBool(b)
		switch {
		case ab == bb:
			return 0
		case !ab:
			return -1
		default:
			return 1
		}
	case rankNumber:
		if c, ok := compareIntegers(a, b); ok {
			return c
		}
		af, _ := export.CoerceFloat(a)
		bf, _ := export.CoerceFloat(b)
		return cmp.Compare(af, bf)
	case rankTime:
		at, _ := export.CoerceTime(a)
		bt, _ := export.CoerceTime(b)
		return at.Compare(bt)
	case rankString:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	default:
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}
}

// compareIntegers compares two integer values of any width without going
// through float64. ok is false unless both are integers.
func compareIntegers(a, b any) (int, bool) {
	aneg, amag, aok := integerParts(a)
	bneg, bmag, bok := integerParts(b)
	if !aok || !bok {
		return 0, false
	}
	switch {
	case aneg && !bneg:
		return -1, true
	case !aneg && bneg:
		return 1, true
	case aneg:
		return cmp.Compare(bmag, amag), true
	default:
		return cmp.Compare(amag, bmag), true
	}
}

func integerParts(value any) (neg bool, mag uint64, ok bool) {
	var i int64
	switch v := value.(type) {
	case int:
		i = int64(v)
	case int8:
		i = int64(v)
	case int16:
		i = int64(v)
	case int32:
		i = int64(v)
	case int64:
		i = v
	case uint:
		return false, uint64(v), true
	case uint8:
		return false, uint64(v), true
	case uint16:
		return false, uint64(v), true
	case uint32:
		return false, uint64(v), true
	case uint64:
		return false, v, true
	default:
		return false, 0, false
	}
	if i < 0 {
		return true, uint64(-(i + 1)) + 1, true
	}
	return false, uint64(i), true
}

func valueRank(value any) int {
	switch v := value.(type) {
	case nil:
		return rankNil
	case bool:
		return rankBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return rankNumber
	case time.Time:
		return rankTime
	case *time.Time:
		if v == nil {
			return rankNil
		}
		return rankTime
	case string, HTML:
		return rankString
	default:
		return rankOther
	}
}

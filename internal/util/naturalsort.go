package util

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var tokenizer = regexp.MustCompile(`(\d+|\D+)`)

type naturalSortToken struct {
	str   string
	num   int
	isNum bool
}

func tokenize(s string) []naturalSortToken {
	parts := tokenizer.FindAllString(s, -1)
	tokens := make([]naturalSortToken, len(parts))
	for i, p := range parts {
		if num, err := strconv.Atoi(p); err == nil {
			tokens[i] = naturalSortToken{num: num, isNum: true}
		} else {
			tokens[i] = naturalSortToken{str: strings.ToLower(strings.TrimSpace(p))}
		}
	}
	return tokens
}

// NaturalSortLess orders titles the way a reader expects: case-insensitive,
// with digit runs compared by value ("Vol 2" before "Vol 10").
func NaturalSortLess(s1, s2 string) bool {
	t1 := tokenize(s1)
	t2 := tokenize(s2)

	for i := 0; i < min(len(t1), len(t2)); i++ {
		if t1[i].isNum != t2[i].isNum {
			return t1[i].isNum
		}
		if t1[i].isNum {
			if t1[i].num != t2[i].num {
				return t1[i].num < t2[i].num
			}
		} else if t1[i].str != t2[i].str {
			return t1[i].str < t2[i].str
		}
	}
	return len(t1) < len(t2)
}

// SortByNaturalKey stably sorts items by the natural order of key(item).
func SortByNaturalKey[T any](items []T, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return NaturalSortLess(key(items[i]), key(items[j]))
	})
}

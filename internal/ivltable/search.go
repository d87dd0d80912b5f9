package ivltable

import "sort"

// SearchLeft returns the index of the first element >= x in the
// non-decreasing slice a (numpy searchsorted(..., side='left')).
func SearchLeft(a []int64, x int64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] >= x })
}

// SearchRight returns the index of the first element > x in the
// non-decreasing slice a (numpy searchsorted(..., side='right')).
func SearchRight(a []int64, x int64) int {
	return sort.Search(len(a), func(i int) bool { return a[i] > x })
}

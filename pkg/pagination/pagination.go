package pagination

import (
	"math"
	"strconv"
)

const (
	// DefaultPageSize is the catalog page size.
	DefaultPageSize = 12
	// FirstPage is where numbering starts.
	FirstPage = 1
	// MaxOffset bounds the rows skipped so the offset never overflows and
	// stays within what every supported database accepts.
	MaxOffset = math.MaxInt32
)

// Page describes one offset page over a result set.
type Page struct {
	Number int
	Size   int
}

// New normalizes number and size. Numbers below one become the first page;
// sizes below one fall back to DefaultPageSize. Numbers whose offset would
// pass MaxOffset are clamped to the last page below it, which is always past
// the end of any real result set.
func New(number, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}
	if number < FirstPage {
		number = FirstPage
	}
	if maxNumber := MaxOffset/size + 1; number > maxNumber {
		number = maxNumber
	}
	return Page{Number: number, Size: size}
}

// ParsePage reads a 1-indexed page number from a query value. Anything that
// is not a positive integer yields the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < FirstPage {
		return FirstPage
	}
	return n
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

// Pages is ceil(total/size). An empty result has zero pages.
func (p Page) Pages(total int64) int {
	if total <= 0 {
		return 0
	}
	size := int64(p.Size)
	return int((total + size - 1) / size)
}

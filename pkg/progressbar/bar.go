package progressbar

// bar is a row of braille cells, each holding eight dots. A cell fills its
// left column top to bottom, then its right column.
type bar struct {
	cells []uint8
}

// visualDots lists the braille bits of one cell in fill order: dots 1, 2, 3
// and 7 make up the left column, dots 4, 5, 6 and 8 the right one.
var visualDots = [8]uint8{0x01, 0x02, 0x04, 0x40, 0x08, 0x10, 0x20, 0x80}

// cellMask returns the mask of a cell with its first lit dots set.
func cellMask(lit int) uint8 {
	var m uint8
	for _, d := range visualDots[:lit] {
		m |= d
	}
	return m
}

func newBar(width int) *bar {
	return &bar{cells: make([]uint8, width)}
}

func (b *bar) dots() int {
	return len(b.cells) * 8
}

// fill lights the first n dots and clears the rest.
func (b *bar) fill(n int) {
	n = max(0, min(n, b.dots()))
	for i := range b.cells {
		b.cells[i] = cellMask(max(0, min(n-i*8, 8)))
	}
}

func braillePattern(mask byte) rune {
	return rune(0x2800) + rune(mask)
}

func (b *bar) String() string {
	res := make([]rune, 0, len(b.cells)+2)
	res = append(res, '[')
	for _, m := range b.cells {
		res = append(res, braillePattern(m))
	}
	res = append(res, ']')
	return string(res)
}

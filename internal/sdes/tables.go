package sdes

// Permutation tables list 1-based source bit positions, most significant bit
// first. Output bit j is source bit table[j].
var (
	ip    = [8]uint8{2, 6, 3, 1, 4, 8, 5, 7}
	ipInv = [8]uint8{4, 1, 3, 5, 7, 2, 8, 6}
	ep    = [8]uint8{4, 1, 2, 3, 2, 3, 4, 1}
	p4    = [4]uint8{2, 4, 3, 1}
	p10   = [10]uint8{3, 5, 2, 7, 4, 10, 1, 9, 8, 6}
	p8    = [8]uint8{6, 3, 7, 4, 8, 5, 10, 9}
)

// Substitution boxes, indexed [row][col].
var (
	s0 = [4][4]uint8{
		{1, 0, 3, 2},
		{3, 2, 1, 0},
		{0, 2, 1, 3},
		{3, 1, 3, 2},
	}
	s1 = [4][4]uint8{
		{0, 1, 2, 3},
		{2, 0, 1, 3},
		{3, 0, 1, 0},
		{2, 1, 0, 3},
	}
)

// permute rearranges the low width bits of in according to table.
func permute(in uint16, width int, table []uint8) uint16 {
	var out uint16
	for _, pos := range table {
		out = out<<1 | (in>>uint(width-int(pos)))&1
	}
	return out
}

// sbox maps a 4-bit input to a 2-bit output. Bits 0 and 3 select the row,
// bits 1 and 2 the column.
func sbox(box *[4][4]uint8, nibble uint8) uint8 {
	row := (nibble>>3)&1<<1 | nibble&1
	col := (nibble >> 1) & 3
	return box[row][col]
}

// rotl5 rotates a 5-bit half left by n.
func rotl5(v uint16, n uint) uint16 {
	n %= 5
	return (v<<n | v>>(5-n)) & 0x1f
}

// Package codegen generates the GPS L1 C/A spreading code and wraps it
// in the wrap-guarded table the replica generator indexes without branching.
package codegen

import "fmt"

// CodeLengthChips is the number of chips in one GPS L1 C/A PRN period.
const CodeLengthChips = 1023

// CodeRateHz is the nominal L1 C/A chipping rate.
const CodeRateHz = 1.023e6

// l1caDelay holds the G2 shift-register delay (in chips) for PRNs 1..210,
// indexed by PRN-1. Only the first 32 entries correspond to real GPS
// satellite vehicles; the remainder cover SBAS/QZSS PRN assignments that
// share the same Gold-code family.
var l1caDelay = []int{
	5, 6, 7, 8, 17, 18, 139, 140, 141, 251,
	252, 254, 255, 256, 257, 258, 469, 470, 471, 472,
	473, 474, 509, 512, 513, 514, 515, 516, 859, 860,
	861, 862, 863, 950, 947, 948, 950, 67, 103, 91,
	19, 679, 225, 625, 946, 638, 161, 1001, 554, 280,
	710, 709, 775, 864, 558, 220, 397, 55, 898, 759,
	367, 299, 1018, 729, 695, 780, 801, 788, 732, 34,
	320, 327, 389, 407, 525, 405, 221, 761, 260, 326,
	955, 653, 699, 422, 188, 438, 959, 539, 879, 677,
	586, 153, 792, 814, 446, 264, 1015, 278, 536, 819,
	156, 957, 159, 712, 885, 461, 248, 713, 126, 807,
	279, 122, 197, 693, 632, 771, 467, 647, 203, 145,
	175, 52, 21, 237, 235, 886, 657, 634, 762, 355,
	1012, 176, 603, 130, 359, 595, 68, 386, 797, 456,
	499, 883, 307, 127, 211, 121, 118, 163, 628, 853,
	484, 289, 811, 202, 1021, 463, 568, 904, 670, 230,
	911, 684, 309, 644, 932, 12, 314, 891, 212, 185,
	675, 503, 150, 395, 345, 846, 798, 992, 357, 995,
	877, 112, 144, 476, 193, 109, 445, 291, 87, 399,
	292, 901, 339, 208, 711, 189, 263, 537, 663, 942,
	173, 900, 30, 500, 935, 556, 373, 85, 652, 310,
}

// Table is the resampled-at-indexing C/A chip sequence, one entry per
// chip, padded with a wrap-guard chip at each end so the replica
// generator's fixed-point indexer can read one slot beyond either
// boundary without a branch or a modulo. Index 0 replicates chip L
// (the last chip) and index L+1 replicates chip 1 (the first chip);
// the real code occupies indices 1..L.
type Table struct {
	chips []int8 // length CodeLengthChips+2
}

// Len returns the number of real chips in the code (excluding the two
// wrap-guard entries).
func (t Table) Len() int { return len(t.chips) - 2 }

// At returns the chip value at 1-based chip index i, where i may be 0
// or Len()+1 to read the wrap-guard entries.
func (t Table) At(i int) int8 { return t.chips[i] }

// Generate builds the C/A code table for the given GPS PRN (1-indexed).
func Generate(prn int) (Table, error) {
	if prn < 1 || prn > len(l1caDelay) {
		return Table{}, fmt.Errorf("codegen: prn %d out of range [1,%d]", prn, len(l1caDelay))
	}

	// G1/G2 shift registers, IS-GPS-200 Gold-code construction.
	var r1, r2 [10]int8
	for i := range r1 {
		r1[i], r2[i] = -1, -1
	}
	g1 := make([]int8, CodeLengthChips)
	g2 := make([]int8, CodeLengthChips)
	for i := 0; i < CodeLengthChips; i++ {
		g1[i] = r1[9]
		g2[i] = r2[9]
		c1 := r1[2] * r1[9]
		c2 := r2[1] * r2[2] * r2[5] * r2[7] * r2[8] * r2[9]
		for j := 9; j > 0; j-- {
			r1[j] = r1[j-1]
			r2[j] = r2[j-1]
		}
		r1[0] = c1
		r2[0] = c2
	}

	chips := make([]int8, CodeLengthChips+2)
	delay := l1caDelay[prn-1]
	j := CodeLengthChips - delay
	for i := 0; i < CodeLengthChips; i++ {
		chips[i+1] = -g1[i] * g2[j%CodeLengthChips]
		j++
	}
	chips[0] = chips[CodeLengthChips]
	chips[CodeLengthChips+1] = chips[1]

	return Table{chips: chips}, nil
}

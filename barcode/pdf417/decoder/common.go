package decoder

import "sort"

// Module widths of a data codeword and of the stop pattern.
const (
	ModulesInCodeword    = 17
	ModulesInStopPattern = 18
)

const (
	numberOfCodewords     = 929
	maxCodewordsInBarcode = numberOfCodewords - 1
	minRowsInBarcode      = 3
	maxRowsInBarcode      = 90
	modulesInCodeword     = ModulesInCodeword
	barsInModule          = 8
)

// symbolTable lists every valid 17-module pattern in ascending order and
// codewordTable holds the codeword each pattern encodes.
var symbolTable, codewordTable = buildSymbolTables()

func buildSymbolTables() (symbols [3 * numberOfCodewords]int, codewords [3 * numberOfCodewords]int) {
	type entry struct{ symbol, codeword int }
	entries := make([]entry, 0, len(symbols))
	for _, cluster := range clusterPatterns {
		for cw, symbol := range cluster {
			entries = append(entries, entry{symbol, cw})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].symbol < entries[j].symbol })
	for i, e := range entries {
		symbols[i] = e.symbol
		codewords[i] = e.codeword
	}
	return symbols, codewords
}

// getCodeword translates a symbol pattern to its codeword, or -1 when the
// pattern is not a PDF417 symbol.
func getCodeword(symbol int) int {
	symbol &= 0x3FFFF
	i := sort.SearchInts(symbolTable[:], symbol)
	if i == len(symbolTable) || symbolTable[i] != symbol {
		return -1
	}
	return codewordTable[i]
}

// ClusterPattern returns the 17-module pattern of codeword value in the
// cluster used by rows r with r%3 == row, most significant bit first. It
// returns -1 for values outside 0..928.
func ClusterPattern(row, value int) int {
	if value < 0 || value >= numberOfCodewords {
		return -1
	}
	return clusterPatterns[row%3][value]
}

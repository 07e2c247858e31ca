package decoder

import "testing"

func TestSymbolTableSorted(t *testing.T) {
	for i := 1; i < len(symbolTable); i++ {
		if symbolTable[i-1] >= symbolTable[i] {
			t.Fatalf("symbolTable not strictly ascending at %d: %#x >= %#x", i, symbolTable[i-1], symbolTable[i])
		}
	}
}

func TestGetCodeword(t *testing.T) {
	for cluster := range clusterPatterns {
		for _, cw := range []int{0, 1, 450, 900, 928} {
			symbol := clusterPatterns[cluster][cw]
			if got := getCodeword(symbol); got != cw {
				t.Errorf("cluster %d: getCodeword(%#x) = %d, want %d", cluster*3, symbol, got, cw)
			}
		}
	}
	if got := getCodeword(0x10000); got != -1 {
		t.Errorf("getCodeword(invalid) = %d, want -1", got)
	}
}

func TestCodewordBucketMatchesCluster(t *testing.T) {
	for cluster := range clusterPatterns {
		for cw, symbol := range clusterPatterns[cluster] {
			if got := getCodewordBucketNumber(symbol); got != cluster*3 {
				t.Fatalf("codeword %d of cluster %d lands in bucket %d", cw, cluster*3, got)
			}
		}
	}
}

func TestGetDecodedValueExactPattern(t *testing.T) {
	symbol := clusterPatterns[1][123]
	counts := getBitCountForCodeword(symbol)
	if got := GetDecodedValue(counts); got != symbol {
		t.Errorf("GetDecodedValue(%v) = %#x, want %#x", counts, got, symbol)
	}
}

package cryptoprim

import "testing"

func TestComputeHMACDeterministic(t *testing.T) {
	key := make([]byte, KeyLength)
	key[0] = 1
	part1 := []byte("header-json")
	part2 := []byte("secrets-json")

	tag1 := ComputeHMAC(key, part1, part2)
	tag2 := ComputeHMAC(key, part1, part2)
	if len(tag1) != HMACLength {
		t.Fatalf("tag length = %d, want %d", len(tag1), HMACLength)
	}
	if !VerifyHMAC(key, tag1, part1, part2) {
		t.Fatal("VerifyHMAC() = false for a freshly computed tag")
	}
	if string(tag1) != string(tag2) {
		t.Fatal("identical inputs produced different tags")
	}
}

func TestComputeHMACConcatenatesParts(t *testing.T) {
	key := make([]byte, KeyLength)

	combined := ComputeHMAC(key, []byte("ab"), []byte("cd"))
	split := ComputeHMAC(key, []byte("a"), []byte("bcd"))
	whole := ComputeHMAC(key, []byte("abcd"))

	if string(combined) != string(whole) {
		t.Fatal("ComputeHMAC over multiple parts did not match tagging the concatenation")
	}
	if string(split) != string(whole) {
		t.Fatal("ComputeHMAC is sensitive to how the message was split across parts, it should not be")
	}
}

func TestVerifyHMACRejectsTamperedData(t *testing.T) {
	key := make([]byte, KeyLength)
	data := []byte("EVLT header+secrets")
	tag := ComputeHMAC(key, data)

	tampered := append([]byte(nil), data...)
	tampered[0] ^= 0xFF
	if VerifyHMAC(key, tag, tampered) {
		t.Fatal("VerifyHMAC() = true for tampered data")
	}
}

func TestVerifyHMACRejectsWrongKey(t *testing.T) {
	key := make([]byte, KeyLength)
	wrongKey := make([]byte, KeyLength)
	wrongKey[0] = 1
	data := []byte("payload")

	tag := ComputeHMAC(key, data)
	if VerifyHMAC(wrongKey, tag, data) {
		t.Fatal("VerifyHMAC() = true under the wrong key")
	}
}

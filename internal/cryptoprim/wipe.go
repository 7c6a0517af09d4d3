package cryptoprim

import "runtime"

// SecureWipe overwrites b with zeros. runtime.KeepAlive stops the compiler
// from proving the write is dead and eliding it, which a plain loop
// followed immediately by the slice going out of scope would otherwise
// risk under escape analysis.
func SecureWipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

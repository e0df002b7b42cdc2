// Package prime provides the primality test used to size the hash range.
package prime

// witnesses is the deterministic Miller-Rabin base set for all n < 4,759,123,141,
// which covers every uint32.
var witnesses = [...]uint64{2, 7, 61}

// IsPrime reports whether n is prime.
func IsPrime(n uint32) bool {
	switch {
	case n < 2:
		return false
	case n == 2 || n == 3 || n == 5 || n == 7:
		return true
	case n%2 == 0 || n%3 == 0 || n%5 == 0 || n%7 == 0:
		return false
	}

	m := uint64(n)
	d := m - 1
	s := 0
	for d%2 == 0 {
		d /= 2
		s++
	}

	for _, a := range witnesses {
		if a%m == 0 {
			continue
		}
		if !checkWitness(powMod(a, d, m), m, s) {
			return false
		}
	}
	return true
}

// NextOddPrime returns the smallest odd prime >= n. ok is false when no such
// prime fits in a uint32.
func NextOddPrime(n uint32) (p uint32, ok bool) {
	c := uint64(n)
	if c <= 3 {
		return 3, true
	}
	if c%2 == 0 {
		c++
	}
	for ; c <= 0xFFFFFFFF; c += 2 {
		if IsPrime(uint32(c)) {
			return uint32(c), true
		}
	}
	return 0, false
}

// powMod computes a^d mod m. m < 2^32, so products fit in 64 bits.
func powMod(a, d, m uint64) uint64 {
	a %= m
	res := uint64(1)
	for d > 0 {
		if d&1 == 1 {
			res = res * a % m
		}
		a = a * a % m
		d >>= 1
	}
	return res
}

func checkWitness(x, m uint64, s int) bool {
	if x == 1 || x == m-1 {
		return true
	}
	for i := 1; i < s; i++ {
		x = x * x % m
		if x == m-1 {
			return true
		}
	}
	return false
}

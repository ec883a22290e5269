package fix

// Checksum sums the code points of the concatenated parts modulo 256.
//
// This is a placeholder digest. It is NOT the FIX standard checksum (which sums
// the bytes of the whole SOH-delimited frame), and a real FIX engine will not
// accept it.
func Checksum(parts ...string) int {
	sum := 0
	for _, p := range parts {
		for _, r := range p {
			sum += int(r)
		}
	}
	return sum % 256
}

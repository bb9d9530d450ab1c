package textsim

// Match is a block of equal elements: a[A:A+Size] == b[B:B+Size].
type Match struct {
	A    int
	B    int
	Size int
}

// Ratio returns the Ratcliff/Obershelp similarity of two sequences,
// 2*M/T where M is the total size of the matching blocks and T the
// combined length. Two empty sequences are identical (1.0).
func Ratio[T comparable](a, b []T) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	matched := 0
	for _, m := range MatchingBlocks(a, b) {
		matched += m.Size
	}
	return 2.0 * float64(matched) / float64(total)
}

// RatioText compares the normalized token sequences of two strings.
func RatioText(a, b string) float64 {
	return Ratio(Tokens(a), Tokens(b))
}

// MatchingBlocks finds the longest common block, then recurses on the
// pieces to its left and right. Blocks are returned in discovery order.
func MatchingBlocks[T comparable](a, b []T) []Match {
	m := newMatcher(a, b)

	type span struct{ alo, ahi, blo, bhi int }
	queue := []span{{0, len(a), 0, len(b)}}
	var blocks []Match

	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		match := m.longestMatch(s.alo, s.ahi, s.blo, s.bhi)
		if match.Size == 0 {
			continue
		}
		blocks = append(blocks, match)
		if s.alo < match.A && s.blo < match.B {
			queue = append(queue, span{s.alo, match.A, s.blo, match.B})
		}
		if match.A+match.Size < s.ahi && match.B+match.Size < s.bhi {
			queue = append(queue, span{match.A + match.Size, s.ahi, match.B + match.Size, s.bhi})
		}
	}
	return blocks
}

type matcher[T comparable] struct {
	a   []T
	b2j map[T][]int
}

func newMatcher[T comparable](a, b []T) *matcher[T] {
	b2j := make(map[T][]int, len(b))
	for j, elt := range b {
		b2j[elt] = append(b2j[elt], j)
	}
	return &matcher[T]{a: a, b2j: b2j}
}

// longestMatch returns the longest block inside a[alo:ahi] and b[blo:bhi].
// Among equally long blocks the one starting earliest in a wins, then the
// one starting earliest in b.
func (m *matcher[T]) longestMatch(alo, ahi, blo, bhi int) Match {
	best := Match{A: alo, B: blo}
	j2len := map[int]int{}

	for i := alo; i < ahi; i++ {
		next := map[int]int{}
		for _, j := range m.b2j[m.a[i]] {
			if j < blo {
				continue
			}
			if j >= bhi {
				break
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > best.Size {
				best = Match{A: i - k + 1, B: j - k + 1, Size: k}
			}
		}
		j2len = next
	}
	return best
}

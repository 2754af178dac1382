package merkle

import "sort"

// knownNode is a node whose digest is already established at the current level.
type knownNode struct {
	pos    int
	digest Digest
}

// siblingSource supplies the digest of a sibling that the merge cannot derive
// from the known nodes. Requests arrive level by level from the leaves up and
// in ascending position within a level.
type siblingSource func(level, pos int) (Digest, error)

// mergeToRoot folds known leaf nodes into the root of a tree with leafCount
// leaves. known must be sorted by position without duplicates. Proof
// generation and multiproof verification both run this merge, so the order in
// which generation records siblings is the order verification consumes them.
func mergeToRoot(h *Hasher, leafCount int, known []knownNode, next siblingSource) (Digest, error) {
	widths := levelWidths(leafCount)
	for level := 0; level < len(widths)-1; level++ {
		width := widths[level]
		parents := make([]knownNode, 0, (len(known)+1)/2)
		for i := 0; i < len(known); i++ {
			cur := known[i]
			sib, ok := siblingOf(cur.pos, width)

			var digest Digest
			switch {
			case !ok:
				digest = cur.digest
			case i+1 < len(known) && known[i+1].pos == sib:
				digest = h.Combine(cur.digest, known[i+1].digest)
				i++
			default:
				supplied, err := next(level, sib)
				if err != nil {
					return Digest{}, err
				}
				digest = h.Combine(cur.digest, supplied)
			}
			parents = append(parents, knownNode{pos: parentOf(cur.pos), digest: digest})
		}
		known = parents
	}
	return known[0].digest, nil
}

// normalizeKnown sorts nodes by position and drops exact duplicates.
// It reports false when the same position is claimed with different digests.
func normalizeKnown(nodes []knownNode) ([]knownNode, bool) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].pos < nodes[j].pos
	})
	out := nodes[:0]
	for _, n := range nodes {
		if len(out) > 0 && out[len(out)-1].pos == n.pos {
			if out[len(out)-1].digest != n.digest {
				return nil, false
			}
			continue
		}
		out = append(out, n)
	}
	return out, true
}

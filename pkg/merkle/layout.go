package merkle

// levelWidths returns the number of nodes on every level of a tree with
// leafCount leaves, from the leaves (index 0) up to the root.
// An odd level promotes its last node unchanged, so each parent level has
// ceil(width/2) nodes.
func levelWidths(leafCount int) []int {
	if leafCount <= 0 {
		return nil
	}
	widths := []int{leafCount}
	for w := leafCount; w > 1; {
		w = (w + 1) / 2
		widths = append(widths, w)
	}
	return widths
}

// siblingOf returns the sibling position of pos on a level of the given width.
// ok is false when pos is the promoted last node of an odd level.
func siblingOf(pos, width int) (sibling int, ok bool) {
	sibling = pos ^ 1
	if sibling >= width {
		return 0, false
	}
	return sibling, true
}

func parentOf(pos int) int {
	return pos / 2
}

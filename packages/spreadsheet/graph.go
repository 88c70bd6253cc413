package spreadsheet

import "sort"

// positionSet is a set of grid positions
type positionSet map[Position]struct{}

func newPositionSet() positionSet {
	return make(positionSet)
}

func (ps positionSet) add(pos Position) {
	ps[pos] = struct{}{}
}

func (ps positionSet) remove(pos Position) {
	delete(ps, pos)
}

func (ps positionSet) has(pos Position) bool {
	_, ok := ps[pos]
	return ok
}

// sorted returns the members in row-major order
func (ps positionSet) sorted() []Position {
	out := make([]Position, 0, len(ps))
	for pos := range ps {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Less(out[j])
	})
	return out
}

// wouldCycle reports whether installing a cell at pos that reads refs
// closes a cycle. the walk follows refs, then the referenced-positions of
// the cells already in the grid. the cell currently at pos is ignored since
// it is the one being replaced.
func (s *Sheet) wouldCycle(pos Position, refs []Position) bool {
	visited := newPositionSet()
	stack := make([]Position, 0, len(refs))
	stack = append(stack, refs...)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if cur == pos {
			return true
		}
		if visited.has(cur) {
			continue
		}
		visited.add(cur)

		cell := s.cells.get(cur)
		if cell == nil {
			continue
		}
		for _, next := range cell.references {
			if !visited.has(next) {
				stack = append(stack, next)
			}
		}
	}

	return false
}

// attach registers pos as a dependent of every position in refs,
// materializing Empty placeholders where nothing is stored yet
func (s *Sheet) attach(pos Position, refs []Position) {
	for _, ref := range refs {
		target := s.cells.get(ref)
		if target == nil {
			target = s.newEmptyCell()
			s.cells.put(ref, target)
		}
		target.dependents.add(pos)
	}
}

// detach removes pos from the dependents of every position in refs and
// drops placeholders that nothing depends on anymore
func (s *Sheet) detach(pos Position, refs []Position) {
	for _, ref := range refs {
		target := s.cells.get(ref)
		if target == nil {
			continue
		}
		target.dependents.remove(pos)
		s.collect(ref)
	}
}

// collect drops the cell at pos from storage when it is Empty and has no
// dependents left
func (s *Sheet) collect(pos Position) {
	cell := s.cells.get(pos)
	if cell != nil && cell.IsEmpty() && len(cell.dependents) == 0 {
		s.cells.remove(pos)
	}
}

// invalidate clears the memoized value of pos and everything that
// transitively depends on it. each reachable cell is visited exactly once;
// the visited positions are returned in visiting order.
func (s *Sheet) invalidate(pos Position) []Position {
	visited := newPositionSet()
	order := make([]Position, 0, 1)
	stack := []Position{pos}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited.has(cur) {
			continue
		}
		visited.add(cur)
		order = append(order, cur)

		cell := s.cells.get(cur)
		if cell == nil {
			continue
		}
		cell.cache = nil
		for dep := range cell.dependents {
			if !visited.has(dep) {
				stack = append(stack, dep)
			}
		}
	}

	s.metrics.observeInvalidation(len(order))
	return order
}

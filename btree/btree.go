// Package btree implements the B+Tree Walker component: descending from a
// tree's root to its first leaf, and iterating the leaf chain via the
// NextPage sibling pointer, verifying the chain as it goes.
package btree

import (
	"fmt"

	"github.com/wilhasse/go-esedb/format"
	"github.com/wilhasse/go-esedb/page"
)

// PageLoader is the narrow interface this package needs: loading a fully
// decoded page by number.
type PageLoader interface {
	LoadPage(pageNo uint32) (*page.DbPage, error)
}

// FirstLeaf descends from pageNo (normally a tree's FDP root page number)
// to the first (leftmost) leaf page, following branch tag index 1 at each
// level exactly as the original reader's find_first_leaf_page does.
func FirstLeaf(l PageLoader, pageNo uint32) (*page.DbPage, error) {
	p, err := l.LoadPage(pageNo)
	if err != nil {
		return nil, err
	}
	if p.Flags().IsLeaf() {
		return p, nil
	}
	if len(p.Tags) < 2 {
		return nil, fmt.Errorf("page %d: branch page has no tag 1 to descend through: %w",
			pageNo, format.ErrRecordMalformed)
	}
	child, err := p.BranchChildPageNumber(p.Tags[1])
	if err != nil {
		return nil, fmt.Errorf("page %d: read branch child: %w", pageNo, err)
	}
	return FirstLeaf(l, child)
}

// RootChild returns the page number to begin a leaf walk from: for a
// parent-of-leaf or branch root page, the child reached via tag index 1;
// for a page that is already a leaf, its own page number.
func RootChild(p *page.DbPage) (uint32, error) {
	if p.Flags().Is(format.PageFlagParentOfLeaf) || !p.Flags().IsLeaf() {
		if len(p.Tags) < 2 {
			return 0, fmt.Errorf("page %d: no tag 1 to find branch child: %w",
				p.PageNumber, format.ErrRecordMalformed)
		}
		return p.BranchChildPageNumber(p.Tags[1])
	}
	if p.Flags().IsLeaf() {
		return p.PageNumber, nil
	}
	return 0, fmt.Errorf("page %d: expected IS_PARENT or IS_LEAF flag, got 0x%x: %w",
		p.PageNumber, uint32(p.Flags()), format.ErrPageFlagsUnexpected)
}

// Visitor is called once per leaf page encountered by Walk, in sibling
// order starting from the leftmost leaf.
type Visitor func(p *page.DbPage) error

// Walk iterates every leaf page in a tree rooted at fdpRootPage, calling
// visit for each one in order, and verifying the PreviousPage chain as it
// advances through NextPage — matching the consistency check the original
// reader performs in load_catalog/load_lv_metadata.
func Walk(l PageLoader, fdpRootPage uint32, visit Visitor) error {
	root, err := l.LoadPage(fdpRootPage)
	if err != nil {
		return err
	}

	first, err := FirstLeaf(l, fdpRootPage)
	if err != nil {
		return err
	}

	prevPageNumber := root.PageNumber
	pageNumber := first.PageNumber
	for pageNumber != 0 {
		p, err := l.LoadPage(pageNumber)
		if err != nil {
			return err
		}
		if p.PreviousPage() != 0 && prevPageNumber != p.PreviousPage() {
			return fmt.Errorf("page %d: previous page %d, expected %d: %w",
				p.PageNumber, p.PreviousPage(), prevPageNumber, format.ErrSiblingChainBroken)
		}
		if !p.Flags().IsLeaf() {
			return fmt.Errorf("page %d: expected IS_LEAF flag: %w", p.PageNumber, format.ErrPageFlagsUnexpected)
		}
		if err := visit(p); err != nil {
			return err
		}
		prevPageNumber = pageNumber
		pageNumber = p.NextPage()
	}
	return nil
}

// LastLeaf finds the true last leaf in a tree by first descending to the
// first leaf, then following NextPage until it reaches 0. This corrects
// the behavior the spec's Design Notes call out: MoveLast/Previous must
// locate the actual tail of the sibling chain rather than assume the leaf
// found by descending branch tag 1 is already the last one.
func LastLeaf(l PageLoader, fdpRootPage uint32) (*page.DbPage, error) {
	p, err := FirstLeaf(l, fdpRootPage)
	if err != nil {
		return nil, err
	}
	for p.NextPage() != 0 {
		p, err = l.LoadPage(p.NextPage())
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

package atlas

// node is one rectangle of a sheet's partition tree. A node is either a leaf
// (free or holding an image) or has exactly two children covering it.
type node struct {
	x, y          int
	width, height int

	left, right *node
	img         *Image
}

func (n *node) leaf() bool { return n.left == nil }

// insert places img in the first free leaf that can hold it, searching
// depth-first with the left child before the right. On success img's
// position is set to the node's corner.
func (n *node) insert(img *Image) bool {
	if !n.leaf() {
		return n.left.insert(img) || n.right.insert(img)
	}
	if n.img != nil || img.width > n.width || img.height > n.height {
		return false
	}
	if img.width == n.width && img.height == n.height {
		n.img = img
		img.x, img.y = n.x, n.y
		return true
	}

	dw := n.width - img.width
	dh := n.height - img.height
	if dw > dh {
		// vertical cut: left column is exactly as wide as the image
		n.left = &node{x: n.x, y: n.y, width: img.width, height: n.height}
		n.right = &node{x: n.x + img.width, y: n.y, width: dw, height: n.height}
	} else {
		// horizontal cut: top row is exactly as tall as the image
		n.left = &node{x: n.x, y: n.y, width: n.width, height: img.height}
		n.right = &node{x: n.x, y: n.y + img.height, width: n.width, height: dh}
	}
	return n.left.insert(img)
}

// walk visits n and its descendants in pre-order, left before right.
func (n *node) walk(fn func(*node) error) error {
	if n == nil {
		return nil
	}
	if err := fn(n); err != nil {
		return err
	}
	if err := n.left.walk(fn); err != nil {
		return err
	}
	return n.right.walk(fn)
}

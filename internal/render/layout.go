package render

// Rect is a screen rectangle in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether (x, y) falls inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Layout splits the screen into the regions a dialogue frame is drawn in.
// Emoji occupy 2 terminal columns, which frame widths account for.
type Layout struct {
	Title     int  // header row
	Band      Rect // background stage
	Frames    [2]Rect
	Nameplate [2]Rect
	Box       Rect // dialogue box including its border
}

const (
	boxRows    = 6 // border + 4 text rows + border
	frameW     = 10
	frameH     = 5
	frameInset = 4
)

// NewLayout computes the regions for a w×h screen. Regions shrink to zero
// size rather than going negative on tiny screens.
func NewLayout(w, h int) Layout {
	var l Layout
	boxH := min(boxRows, max(h-1, 0))
	l.Box = Rect{X: 0, Y: h - boxH, W: w, H: boxH}
	l.Band = Rect{X: 0, Y: 1, W: w, H: max(l.Box.Y-1, 0)}

	fh := min(frameH, max(l.Band.H-1, 0))
	fy := l.Band.Y + max(l.Band.H-1-fh, 0)
	fw := min(frameW, w/2)
	left := Rect{X: min(frameInset, max(w/2-fw, 0)), Y: fy, W: fw, H: fh}
	right := Rect{X: max(w-frameInset-fw, w/2), Y: fy, W: fw, H: fh}
	if right.X+right.W > w {
		right.W = max(w-right.X, 0)
	}
	l.Frames = [2]Rect{left, right}

	// Nameplates sit on the row between the frames and the box.
	py := l.Box.Y - 1
	l.Nameplate = [2]Rect{
		{X: left.X, Y: py, W: w/2 - left.X, H: 1},
		{X: right.X, Y: py, W: w - right.X, H: 1},
	}
	return l
}

// TextArea is the inside of the dialogue box.
func (l Layout) TextArea() Rect {
	r := Rect{X: l.Box.X + 2, Y: l.Box.Y + 1, W: l.Box.W - 4, H: l.Box.H - 2}
	r.W = max(r.W, 0)
	r.H = max(r.H, 0)
	return r
}

// Package render draws scheduler frames as text.
//
// Terminal paints each cell with a background colour that marks where the
// gardeners stand. Plain writes the same grid without colours, which is the
// format of the frames file. Rows are printed from the top (y = size-1) down
// to y = 0 so the picture matches the coordinate system.
package render

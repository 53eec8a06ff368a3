// ROI (Region of Interest) selection for restricting processing to part of an image
package core

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// Region is a rectangle or polygon selection in image coordinates
type Region struct {
	Bounds image.Rectangle
	// Points is the polygon outline, nil for a rectangle
	Points []image.Point
}

// RectRegion selects the w x h rectangle at (x, y)
func RectRegion(x, y, w, h int) (Region, error) {
	if w <= 0 || h <= 0 {
		return Region{}, fmt.Errorf("region size must be positive, got %dx%d", w, h)
	}
	return Region{Bounds: image.Rect(x, y, x+w, y+h)}, nil
}

// PolygonRegion selects the pixels inside a closed polygon
func PolygonRegion(points []image.Point) (Region, error) {
	if len(points) < 3 {
		return Region{}, fmt.Errorf("polygon region needs at least 3 points, got %d", len(points))
	}

	bounds := calculateBounds(points)
	if bounds.Empty() {
		return Region{}, fmt.Errorf("polygon region has no area")
	}

	pts := make([]image.Point, len(points))
	copy(pts, points)
	return Region{Bounds: bounds, Points: pts}, nil
}

// ParseRegion reads "x,y,w,h" for a rectangle or "x1,y1;x2,y2;x3,y3..." for a polygon
func ParseRegion(s string) (Region, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ";") {
		parts := strings.Split(s, ";")
		points := make([]image.Point, 0, len(parts))
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			v, err := parseInts(part, 2)
			if err != nil {
				return Region{}, fmt.Errorf("invalid polygon point %q: %w", part, err)
			}
			points = append(points, image.Pt(v[0], v[1]))
		}
		return PolygonRegion(points)
	}

	v, err := parseInts(s, 4)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region %q: %w", s, err)
	}
	return RectRegion(v[0], v[1], v[2], v[3])
}

func parseInts(s string, n int) ([]int, error) {
	fields := strings.Split(s, ",")
	if len(fields) != n {
		return nil, fmt.Errorf("expected %d comma separated integers", n)
	}

	values := make([]int, n)
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (r Region) IsZero() bool {
	return r.Bounds.Empty()
}

func (r Region) IsPolygon() bool {
	return len(r.Points) >= 3
}

func (r Region) String() string {
	if r.IsPolygon() {
		return fmt.Sprintf("polygon%v", r.Points)
	}
	return r.Bounds.String()
}

// clip intersects the region bounds with a cols x rows image
func (r Region) clip(cols, rows int) (image.Rectangle, error) {
	clipped := r.Bounds.Intersect(image.Rect(0, 0, cols, rows))
	if clipped.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %v lies outside the %dx%d image", r.Bounds, cols, rows)
	}
	return clipped, nil
}

// mask returns an 8-bit mask the size of area with 255 where the region covers it.
// The caller must close it.
func (r Region) mask(area image.Rectangle) (gocv.Mat, error) {
	mask := gocv.NewMatWithSize(area.Dy(), area.Dx(), gocv.MatTypeCV8UC1)
	pix, err := mask.DataPtrUint8()
	if err != nil {
		mask.Close()
		return gocv.NewMat(), fmt.Errorf("access mask pixels: %w", err)
	}

	for y := 0; y < area.Dy(); y++ {
		for x := 0; x < area.Dx(); x++ {
			p := image.Pt(area.Min.X+x, area.Min.Y+y)
			inside := p.In(r.Bounds)
			if inside && r.IsPolygon() {
				inside = isPointInPolygon(p, r.Points)
			}
			if inside {
				pix[y*area.Dx()+x] = 255
			} else {
				pix[y*area.Dx()+x] = 0
			}
		}
	}

	return mask, nil
}

// calculateBounds returns the smallest rectangle holding every point
func calculateBounds(points []image.Point) image.Rectangle {
	if len(points) == 0 {
		return image.Rectangle{}
	}

	minX, minY := points[0].X, points[0].Y
	maxX, maxY := points[0].X, points[0].Y

	for _, point := range points {
		minX = min(minX, point.X)
		maxX = max(maxX, point.X)
		minY = min(minY, point.Y)
		maxY = max(maxY, point.Y)
	}

	return image.Rect(minX, minY, maxX+1, maxY+1)
}

// isPointInPolygon checks if a point is inside a polygon using ray casting
func isPointInPolygon(point image.Point, polygon []image.Point) bool {
	if len(polygon) < 3 {
		return false
	}

	x, y := float64(point.X), float64(point.Y)
	inside := false

	j := len(polygon) - 1
	for i := 0; i < len(polygon); i++ {
		xi, yi := float64(polygon[i].X), float64(polygon[i].Y)
		xj, yj := float64(polygon[j].X), float64(polygon[j].Y)

		if ((yi > y) != (yj > y)) && (x < (xj-xi)*(y-yi)/(yj-yi)+xi) {
			inside = !inside
		}
		j = i
	}

	return inside
}

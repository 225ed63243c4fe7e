package render

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/chewxy/math32"

	"github.com/teranos/orrery/camera"
	"github.com/teranos/orrery/scene"
)

type vec struct{ x, y, z float32 }

func v3(p scene.Vec3) vec { return vec{float32(p.X), float32(p.Y), float32(p.Z)} }

func (a vec) add(b vec) vec { return vec{a.x + b.x, a.y + b.y, a.z + b.z} }
func (a vec) sub(b vec) vec { return vec{a.x - b.x, a.y - b.y, a.z - b.z} }
func (a vec) scale(s float32) vec { return vec{a.x * s, a.y * s, a.z * s} }
func (a vec) dot(b vec) float32 { return a.x*b.x + a.y*b.y + a.z*b.z }
func (a vec) length() float32 { return math32.Sqrt(a.dot(a)) }
func (a vec) norm() vec { return a.scale(1 / a.length()) }

// rotY rotates p about the Y axis by the angle whose sine and cosine are given.
func rotY(p vec, s, c float32) vec { return vec{p.x*c + p.z*s, p.y, -p.x*s + p.z*c} }

// rotX rotates p about the X axis.
func rotX(p vec, s, c float32) vec { return vec{p.x, p.y*c - p.z*s, p.y*s + p.z*c} }

func unrotY(p vec, s, c float32) vec { return rotY(p, -s, c) }
func unrotX(p vec, s, c float32) vec { return rotX(p, -s, c) }

func sincos(a float64) (float32, float32) {
	x := float32(a)
	return math32.Sin(x), math32.Cos(x)
}

// px is a premultiplied color with components in [0,1].
type px struct{ r, g, b, a float32 }

func fromNRGBA(c color.NRGBA) px {
	a := float32(c.A) / 255
	return px{float32(c.R) / 255 * a, float32(c.G) / 255 * a, float32(c.B) / 255 * a, a}
}

func (p px) over(dst px) px {
	k := 1 - p.a
	return px{p.r + dst.r*k, p.g + dst.g*k, p.b + dst.b*k, p.a + dst.a*k}
}

func (p px) shade(f float32) px {
	return px{p.r * f, p.g * f, p.b * f, p.a}
}

func (p px) rgba() color.RGBA {
	return color.RGBA{clamp8(p.r), clamp8(p.g), clamp8(p.b), clamp8(p.a)}
}

func clamp8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

var starColor = px{1, 1, 1, 1}

// sample reads a texture at normalized coordinates, u wrapping and v clamped.
func sample(img image.Image, u, v float32) px {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return px{}
	}
	u -= math32.Floor(u)
	x := int(u * float32(w))
	y := int(v * float32(h))
	if x >= w {
		x = w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= h {
		y = h - 1
	}

	if rgba, ok := img.(*image.RGBA); ok {
		c := rgba.RGBAAt(b.Min.X+x, b.Min.Y+y)
		return px{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
	}
	r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
	return px{float32(r) / 0xffff, float32(g) / 0xffff, float32(bl) / 0xffff, float32(a) / 0xffff}
}

func surface(m scene.Material, u, v float32) px {
	if m.Texture != nil {
		return sample(m.Texture, u, v)
	}
	return fromNRGBA(m.Color)
}

type sphere struct {
	center vec
	radius float32
	sin    float32
	cos    float32
	mat    scene.Material
}

type ring struct {
	center       vec
	normal       vec
	inner, outer float32
	sinY, cosY   float32
	sinX, cosX   float32
	mat          scene.Material
}

type light struct {
	pos       vec
	intensity float32
	ambient   bool
}

// hit is one intersection along a view ray. depth is view-space distance
// along -Z.
type hit struct {
	depth float32
	color px
}

// frame holds everything precomputed for one Draw call.
type frame struct {
	eye      vec
	tanHalf  float32
	aspect   float32
	near     float32
	far      float32
	opaque   []sphere
	clear    []sphere
	rings    []ring
	lights   []light
	bg       scene.Material
	stars    []float32 // per-pixel star depth, MaxFloat32 where empty
	width    int
	height   int
	overlays []hit
}

func newFrame(s *scene.Scene, cam camera.Camera, w, h int) *frame {
	f := &frame{
		eye:     vec{float32(cam.X), float32(cam.Y), float32(cam.Z)},
		tanHalf: math32.Tan(float32(cam.FOV) * math32.Pi / 360),
		aspect:  float32(cam.Aspect),
		near:    float32(cam.Near),
		far:     float32(cam.Far),
		bg:      s.Background,
		width:   w,
		height:  h,
	}
	if f.aspect <= 0 {
		f.aspect = float32(w) / float32(h)
	}

	for _, l := range s.Lights {
		f.lights = append(f.lights, light{pos: v3(l.Position), intensity: float32(l.Intensity), ambient: l.Ambient})
	}

	for _, b := range s.Bodies {
		sin, cos := sincos(b.RotationY)
		sp := sphere{center: v3(b.Position), radius: float32(b.Radius), sin: sin, cos: cos, mat: b.Material}
		if b.Material.Transparent {
			f.clear = append(f.clear, sp)
		} else {
			f.opaque = append(f.opaque, sp)
		}
		for _, r := range b.Rings {
			sx, cx := sincos(r.TiltX)
			n := rotY(rotX(vec{0, 0, 1}, sx, cx), sin, cos)
			f.rings = append(f.rings, ring{
				center: sp.center,
				normal: n,
				inner:  float32(r.Inner()),
				outer:  float32(r.Outer()),
				sinY:   sin,
				cosY:   cos,
				sinX:   sx,
				cosX:   cx,
				mat:    r.Material,
			})
		}
	}

	f.projectStars(s.Stars)
	return f
}

// projectStars splats every star as a disc into a depth layer. Stars are
// small enough that a ray test per pixel would be wasted work.
func (f *frame) projectStars(stars []scene.Star) {
	f.stars = make([]float32, f.width*f.height)
	for i := range f.stars {
		f.stars[i] = math.MaxFloat32
	}

	halfW := float32(f.width) / 2
	halfH := float32(f.height) / 2
	for _, st := range stars {
		rel := v3(st.Position).sub(f.eye)
		depth := -rel.z
		if depth < f.near || depth > f.far {
			continue
		}
		// normalized device coordinates
		nx := rel.x / (depth * f.tanHalf * f.aspect)
		ny := rel.y / (depth * f.tanHalf)
		if nx < -1.1 || nx > 1.1 || ny < -1.1 || ny > 1.1 {
			continue
		}
		cx := (nx + 1) * halfW
		cy := (1 - ny) * halfH
		pr := float32(st.Radius) / (depth * f.tanHalf) * halfH
		if pr < 0.5 {
			pr = 0.5
		}

		x0, x1 := int(cx-pr), int(cx+pr)
		y0, y1 := int(cy-pr), int(cy+pr)
		for y := y0; y <= y1; y++ {
			if y < 0 || y >= f.height {
				continue
			}
			for x := x0; x <= x1; x++ {
				if x < 0 || x >= f.width {
					continue
				}
				dx := float32(x) + 0.5 - cx
				dy := float32(y) + 0.5 - cy
				if dx*dx+dy*dy > pr*pr {
					continue
				}
				if i := y*f.width + x; depth < f.stars[i] {
					f.stars[i] = depth
				}
			}
		}
	}
}

func (f *frame) ray(x, y int) vec {
	nx := (2*(float32(x)+0.5)/float32(f.width) - 1) * f.tanHalf * f.aspect
	ny := (1 - 2*(float32(y)+0.5)/float32(f.height)) * f.tanHalf
	return vec{nx, ny, -1}.norm()
}

func (f *frame) background(x, y int) px {
	u := (float32(x) + 0.5) / float32(f.width)
	v := (float32(y) + 0.5) / float32(f.height)
	return surface(f.bg, u, v)
}

// intersect returns the distance along dir to the front of s, or false.
func (s sphere) intersect(eye, dir vec, near float32) (float32, bool) {
	oc := eye.sub(s.center)
	b := oc.dot(dir)
	c := oc.dot(oc) - s.radius*s.radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math32.Sqrt(disc)
	t := -b - sq
	if t < near {
		t = -b + sq
	}
	return t, t >= near
}

// color returns the surface color of s at world point p.
func (s sphere) color(p vec, lights []light) px {
	n := p.sub(s.center).scale(1 / s.radius)
	local := unrotY(n, s.sin, s.cos)
	u := math32.Atan2(local.z, -local.x) / (2 * math32.Pi)
	v := math32.Acos(clampUnit(local.y)) / math32.Pi

	c := surface(s.mat, u, v)
	if s.mat.Lit {
		c = c.shade(lighting(p, n, lights))
	}
	return c
}

func (r ring) intersect(eye, dir vec, near float32) (float32, vec, bool) {
	denom := dir.dot(r.normal)
	if math32.Abs(denom) < 1e-6 {
		return 0, vec{}, false
	}
	t := r.center.sub(eye).dot(r.normal) / denom
	if t < near {
		return 0, vec{}, false
	}
	p := eye.add(dir.scale(t))
	d := p.sub(r.center).length()
	if d < r.inner || d > r.outer {
		return 0, vec{}, false
	}
	return t, p, true
}

func (r ring) color(p vec) px {
	local := unrotX(unrotY(p.sub(r.center), r.sinY, r.cosY), r.sinX, r.cosX)
	u := math32.Atan2(local.y, local.x) / (2 * math32.Pi)
	v := (local.length() - r.inner) / (r.outer - r.inner)
	return surface(r.mat, u, v)
}

func lighting(p, n vec, lights []light) float32 {
	var sum float32
	for _, l := range lights {
		if l.ambient {
			sum += l.intensity
			continue
		}
		dir := l.pos.sub(p).norm()
		if d := n.dot(dir); d > 0 {
			sum += d * l.intensity
		}
	}
	if sum > 1 {
		return 1
	}
	return sum
}

func clampUnit(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

// pixel traces the view ray through (x, y).
func (f *frame) pixel(x, y int) px {
	dir := f.ray(x, y)
	cosZ := -dir.z // converts ray distance to view depth

	out := f.background(x, y)
	depth := f.far

	if sd := f.stars[y*f.width+x]; sd < depth {
		out = starColor
		depth = sd
	}

	for i := range f.opaque {
		t, ok := f.opaque[i].intersect(f.eye, dir, f.near)
		if !ok {
			continue
		}
		if d := t * cosZ; d < depth {
			depth = d
			out = f.opaque[i].color(f.eye.add(dir.scale(t)), f.lights)
		}
	}

	f.overlays = f.overlays[:0]
	for i := range f.clear {
		t, ok := f.clear[i].intersect(f.eye, dir, f.near)
		if !ok {
			continue
		}
		if d := t * cosZ; d < depth {
			f.overlays = append(f.overlays, hit{d, f.clear[i].color(f.eye.add(dir.scale(t)), f.lights)})
		}
	}
	for i := range f.rings {
		t, p, ok := f.rings[i].intersect(f.eye, dir, f.near)
		if !ok {
			continue
		}
		if d := t * cosZ; d < depth {
			f.overlays = append(f.overlays, hit{d, f.rings[i].color(p)})
		}
	}

	if len(f.overlays) > 1 {
		sort.Slice(f.overlays, func(i, j int) bool { return f.overlays[i].depth > f.overlays[j].depth })
	}
	for _, h := range f.overlays {
		out = h.color.over(out)
	}
	out.a = 1
	return out
}

// Draw renders s as seen from cam into dst, covering dst's bounds.
func Draw(dst *image.RGBA, s *scene.Scene, cam camera.Camera) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}
	f := newFrame(s, cam, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetRGBA(b.Min.X+x, b.Min.Y+y, f.pixel(x, y).rgba())
		}
	}
}

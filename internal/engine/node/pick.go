package node

import (
	"slices"

	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/pkg/math"
)

// PickOptions controls ray picking.
type PickOptions struct {
	AcceptBackFaces bool
	AcceptBehind    bool
	// MaxHits bounds the hits collected per node. Zero means no limit.
	MaxHits int
}

// PickHit is one intersection of a global ray with a node's mesh.
type PickHit struct {
	Node *Node
	Face int
	// LocalLocation is the hit in the node's frame.
	LocalLocation math.Vec3
	// Location is the hit in the root's frame.
	Location math.Vec3
	// Distance is measured in the root's frame from the ray start. It is
	// negative for hits behind the start.
	Distance float32
}

// IntersectRay intersects a ray given in the root's frame with the mesh
// of n. The ray is moved into the node's frame, tested against every face,
// and the hits are mapped back. Hits are sorted nearest first. Structural
// nodes and nodes without mesh data never hit.
func (n *Node) IntersectRay(ray math.Ray, opts PickOptions) []PickHit {
	d := n.drawable
	if d == nil || d.mesh == nil {
		return nil
	}
	local := ray.Transform(n.InverseTransformMatrix())
	hits := d.mesh.IntersectRay(local, mesh.HitOptions{
		AcceptBackFaces: opts.AcceptBackFaces,
		AcceptBehind:    opts.AcceptBehind,
		MaxHits:         opts.MaxHits,
	})
	if len(hits) == 0 {
		return nil
	}

	g := n.TransformMatrix()
	out := make([]PickHit, 0, len(hits))
	for _, h := range hits {
		loc := g.TransformPoint(h.Location)
		dist := loc.Distance(ray.Start)
		if h.Distance < 0 {
			dist = -dist
		}
		out = append(out, PickHit{
			Node:          n,
			Face:          h.Face,
			LocalLocation: h.Location,
			Location:      loc,
			Distance:      dist,
		})
	}
	slices.SortStableFunc(out, func(a, b PickHit) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})
	return out
}

// BoundingVolumeHitByRay reports whether a ray in the root's frame
// reaches the bounding volume of n. Structural nodes report false.
func (n *Node) BoundingVolumeHitByRay(ray math.Ray) bool {
	if n.drawable == nil {
		return false
	}
	return n.drawable.volume.IntersectsRay(ray, n.TransformMatrix())
}

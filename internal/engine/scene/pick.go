package scene

import (
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/internal/metrics"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Pick returns the nearest hit of a global ray with a touchable mesh node
// in front of the ray start. Nodes whose bounding volume the ray misses
// are not tested face by face.
func (s *Scene) Pick(ray math.Ray) (node.PickHit, bool) {
	opts := node.PickOptions{MaxHits: s.cfg.MaxPickHits}
	var best node.PickHit
	found := false

	s.root.BeginTraversal()
	defer s.root.EndTraversal()

	s.root.Walk(func(n *node.Node) bool {
		if !n.Visible() && !n.AllowTouchWhenInvisible() {
			return false
		}
		d := n.Drawable()
		if d == nil || !d.HasLocalContent() || !n.IsTouchable() {
			return true
		}
		if !n.BoundingVolumeHitByRay(ray) {
			return true
		}
		for _, h := range n.IntersectRay(ray, opts) {
			if h.Distance < 0 {
				continue
			}
			if !found || h.Distance < best.Distance {
				best, found = h, true
			}
			break
		}
		return true
	})
	return best, found
}

// PickAt picks through viewport pixel (x, y) of the active camera, with
// the origin at the lower left. The hit is handed to the pick handler of
// the touch-enabled node responsible for the node hit.
func (s *Scene) PickAt(x, y float32) (node.PickHit, bool) {
	metrics.CountPick(s.label())
	hit, ok := s.Pick(s.active.ScreenRay(x, y))
	if !ok {
		return hit, false
	}
	target := hit.Node.TouchableNode()
	logger.Debug("node picked",
		zap.Stringer("node", hit.Node),
		zap.Float32("distance", hit.Distance),
	)
	if target != nil {
		if h := target.PickHandler(); h != nil {
			h.Picked(target, hit)
		}
	}
	return hit, true
}

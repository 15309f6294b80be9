// pkg/render/engo/renderer.go
package engo

import (
	"image/color"

	"github.com/EngoEngine/ecs"
	engoengine "github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-clothsim/pkg/network"
)

const (
	nodeSize       = 4
	pixelsPerMeter = 40
)

var (
	nodeColor     = color.RGBA{230, 230, 230, 255}
	colliderColor = color.RGBA{200, 60, 60, 255}
)

// clothEntity is one drawable node or collider in the ECS world.
type clothEntity struct {
	ecs.BasicEntity
	common.RenderComponent
	common.SpaceComponent
}

// ClothRenderer draws the cloth nodes and colliders as circles. The
// world X/Y plane is projected onto the screen, so the cloth is viewed
// from the side.
type ClothRenderer struct {
	world        *ecs.World
	renderSystem *common.RenderSystem

	nodes     []*clothEntity
	colliders map[string]*clothEntity
}

// NewClothRenderer creates a renderer bound to an ECS world.
func NewClothRenderer(world *ecs.World) *ClothRenderer {
	return &ClothRenderer{
		world:     world,
		colliders: make(map[string]*clothEntity),
	}
}

// Initialize registers the render system. The node entities are created
// lazily on the first snapshot, once the grid size is known.
func (r *ClothRenderer) Initialize() {
	r.renderSystem = &common.RenderSystem{}
	r.world.AddSystem(r.renderSystem)
}

// Update applies one snapshot to the drawable entities.
func (r *ClothRenderer) Update(snapshot network.SnapshotMessage) {
	r.ensureNodes(len(snapshot.Positions))

	for i, pos := range snapshot.Positions {
		point := worldToScreen(pos[0], pos[1])
		r.nodes[i].SpaceComponent.Position = point
	}

	r.syncColliders(snapshot.Colliders)
}

// ensureNodes creates one circle entity per cloth node.
func (r *ClothRenderer) ensureNodes(count int) {
	for len(r.nodes) < count {
		node := &clothEntity{BasicEntity: ecs.NewBasic()}
		node.RenderComponent = common.RenderComponent{
			Drawable: common.Circle{},
			Color:    nodeColor,
		}
		node.SpaceComponent = common.SpaceComponent{
			Width:  nodeSize,
			Height: nodeSize,
		}
		r.renderSystem.Add(&node.BasicEntity, &node.RenderComponent, &node.SpaceComponent)
		r.nodes = append(r.nodes, node)
	}
}

// syncColliders adds, moves and removes collider entities to match the
// snapshot.
func (r *ClothRenderer) syncColliders(states []network.ColliderState) {
	seen := make(map[string]bool, len(states))

	for _, state := range states {
		seen[state.ID] = true
		diameter := 2 * state.Radius * pixelsPerMeter

		entity, ok := r.colliders[state.ID]
		if !ok {
			entity = &clothEntity{BasicEntity: ecs.NewBasic()}
			entity.RenderComponent = common.RenderComponent{
				Drawable: common.Circle{},
				Color:    colliderColor,
			}
			entity.SpaceComponent = common.SpaceComponent{
				Width:  diameter,
				Height: diameter,
			}
			r.renderSystem.Add(&entity.BasicEntity, &entity.RenderComponent, &entity.SpaceComponent)
			r.colliders[state.ID] = entity
		}

		center := worldToScreen(state.Center[0], state.Center[1])
		// SpaceComponent positions are the top-left corner.
		entity.SpaceComponent.Position = engoengine.Point{
			X: center.X - diameter/2,
			Y: center.Y - diameter/2,
		}
		entity.SpaceComponent.Width = diameter
		entity.SpaceComponent.Height = diameter
	}

	for id, entity := range r.colliders {
		if !seen[id] {
			r.renderSystem.Remove(entity.BasicEntity)
			delete(r.colliders, id)
		}
	}
}

// worldToScreen converts world X/Y coordinates to screen coordinates.
// World Y grows upward, screen Y grows downward.
func worldToScreen(x, y float32) engoengine.Point {
	return engoengine.Point{
		X: x*pixelsPerMeter + engoengine.GameWidth()/2,
		Y: engoengine.GameHeight()/2 - y*pixelsPerMeter,
	}
}

// pkg/render/engo/scene.go
package engo

import (
	"sync"

	"github.com/EngoEngine/ecs"
	engoengine "github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"

	"github.com/opd-ai/go-clothsim/pkg/network"
)

// ViewerScene renders a remote cloth simulation. Snapshots arrive on
// the client's read goroutine and are applied on the render thread
// inside snapshotSystem.Update.
type ViewerScene struct {
	world    *ecs.World
	client   *network.SimClient
	renderer *ClothRenderer

	mu      sync.Mutex
	pending *network.SnapshotMessage
}

// NewViewerScene creates a scene fed by the given client. The client
// must be connected before engo.Run starts the scene.
func NewViewerScene(client *network.SimClient) *ViewerScene {
	return &ViewerScene{
		client: client,
		world:  &ecs.World{},
	}
}

// Type returns the scene type (required by Engo)
func (scene *ViewerScene) Type() string {
	return "ViewerScene"
}

// Preload is called before the scene starts (required by Engo)
func (scene *ViewerScene) Preload() {}

// Setup is called when the scene starts (required by Engo)
func (scene *ViewerScene) Setup(u engoengine.Updater) {
	scene.world = &ecs.World{}
	scene.world.AddSystem(&common.MouseSystem{})

	scene.renderer = NewClothRenderer(scene.world)
	scene.renderer.Initialize()

	scene.world.AddSystem(&snapshotSystem{scene: scene})

	scene.client.OnSnapshot(func(snapshot network.SnapshotMessage) {
		scene.mu.Lock()
		scene.pending = &snapshot
		scene.mu.Unlock()
	})
}

// Exit is called when the scene is exiting (required by Engo)
func (scene *ViewerScene) Exit() {
	scene.client.Close()
}

// takePending returns the newest unapplied snapshot, if any. Older
// snapshots that arrived between frames are dropped.
func (scene *ViewerScene) takePending() *network.SnapshotMessage {
	scene.mu.Lock()
	defer scene.mu.Unlock()
	snapshot := scene.pending
	scene.pending = nil
	return snapshot
}

// snapshotSystem applies the latest snapshot once per frame.
type snapshotSystem struct {
	scene *ViewerScene
}

// Update implements ecs.System.
func (s *snapshotSystem) Update(dt float32) {
	if snapshot := s.scene.takePending(); snapshot != nil {
		s.scene.renderer.Update(*snapshot)
	}
}

// Remove implements ecs.System.
func (s *snapshotSystem) Remove(ecs.BasicEntity) {}

package overlay

import "context"

// Injector binds controls to action containers at most once each.
type Injector struct {
	processed map[string]struct{}
}

func NewInjector() *Injector {
	return &Injector{processed: map[string]struct{}{}}
}

// Bind injects controls into c unless it was already processed or already
// carries a controls block. It reports whether it injected.
func (in *Injector) Bind(ctx context.Context, d Driver, c ContainerHandle, st ControlsState) (bool, error) {
	if _, ok := in.processed[c.ID]; ok {
		return false, nil
	}
	if c.HasControls {
		in.processed[c.ID] = struct{}{}
		return false, nil
	}
	if err := d.InjectControls(ctx, c.ID, st); err != nil {
		return false, err
	}
	in.processed[c.ID] = struct{}{}
	return true, nil
}

// Prune forgets containers no longer in present.
func (in *Injector) Prune(present map[string]struct{}) int {
	n := 0
	for id := range in.processed {
		if _, ok := present[id]; !ok {
			delete(in.processed, id)
			n++
		}
	}
	return n
}

// Processed returns how many containers are bound.
func (in *Injector) Processed() int { return len(in.processed) }

// Reset forgets every container.
func (in *Injector) Reset() { clear(in.processed) }

package object

// JunkSpawner introduces new falling entities while a launched session is
// past its grace period.
type JunkSpawner struct{}

// Update rolls the spawn chance once and, on success, spawns one entity at
// the top of the play area.
func (s JunkSpawner) Update(ctx UpdateContext) bool {
	t := ctx.Tuning
	if !ctx.Launched || ctx.Elapsed <= t.SpawnGrace || ctx.Spawner == nil {
		return false
	}
	if ctx.Rand.Float64() >= t.SpawnChance {
		return false
	}

	kind := KindJunk
	if ctx.Rand.Float64() <= t.HazardCutoff {
		kind = KindEmpanada
		if ctx.Rand.Float64() > t.MateCutoff {
			kind = KindMate
		}
	}
	x := ctx.Rand.Float64() * t.SpawnSpan
	ctx.Spawner.Spawn(NewJunk(ctx.Spawner.NextID(), kind, x, t.SpawnY, ctx.LayoutTuning()))
	return false
}

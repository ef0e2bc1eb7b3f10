package trace

// Contents is a bitmask describing what a volume is made of.
type Contents uint32

const (
	ContentsEmpty Contents = 0

	ContentsSolid        Contents = 0x1
	ContentsWindow       Contents = 0x2
	ContentsAux          Contents = 0x4
	ContentsGrate        Contents = 0x8
	ContentsSlime        Contents = 0x10
	ContentsWater        Contents = 0x20
	ContentsBlockLOS     Contents = 0x40
	ContentsOpaque       Contents = 0x80
	ContentsTestFogVol   Contents = 0x100
	ContentsTeam1        Contents = 0x800
	ContentsTeam2        Contents = 0x1000
	ContentsIgnoreNoDraw Contents = 0x2000
	ContentsMoveable     Contents = 0x4000
	ContentsAreaPortal   Contents = 0x8000
	ContentsPlayerClip   Contents = 0x10000
	ContentsMonsterClip  Contents = 0x20000
	ContentsOrigin       Contents = 0x1000000
	ContentsMonster      Contents = 0x2000000
	ContentsDebris       Contents = 0x4000000
	ContentsDetail       Contents = 0x8000000
	ContentsTranslucent  Contents = 0x10000000
	ContentsLadder       Contents = 0x20000000
	ContentsHitbox       Contents = 0x40000000
)

const (
	MaskAll         = Contents(0xFFFFFFFF)
	MaskSolid       = ContentsSolid | ContentsMoveable | ContentsWindow | ContentsMonster | ContentsGrate
	MaskPlayerSolid = MaskSolid | ContentsPlayerClip
	MaskShot        = ContentsSolid | ContentsMoveable | ContentsMonster | ContentsWindow | ContentsDebris | ContentsHitbox
	MaskOpaque      = ContentsSolid | ContentsMoveable | ContentsOpaque
	MaskWater       = ContentsWater | ContentsMoveable | ContentsSlime
)

// Has reports whether any of the bits in o are set in c.
func (c Contents) Has(o Contents) bool {
	return c&o != 0
}

// SurfaceHitbox is set on surfaces reported by hit volume tests.
const SurfaceHitbox uint16 = 0x8000

// Surface describes the material of whatever a trace hit.
type Surface struct {
	Name  string
	Flags uint16
	Props int16
}

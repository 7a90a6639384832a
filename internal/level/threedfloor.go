package level

// specialSector3DFloor is Sector_Set3dFloor(tag, type, flags, alpha): a
// line special belonging to a closed dummy sector (the control sector)
// that layers that sector's floor/ceiling into every sector tagged
// args[0] as a 3D floor.
const specialSector3DFloor = 160

// ResolveX3DFloors scans every line for Sector_Set3dFloor and appends a
// ControlSector entry to each sector the line's tag names. Must run
// after FixupBackPointers, since it reads the line's resolved front
// sector as the control sector.
func (lvl *Level) ResolveX3DFloors() {
	for i := range lvl.Lines {
		l := &lvl.Lines[i]
		if l.Special != specialSector3DFloor || !l.HasFrontSector() {
			continue
		}
		tag := l.Args[0]
		flags := l.Args[1]
		control := l.FrontSector
		for si := range lvl.Sectors {
			if si == int(control) {
				continue
			}
			for _, t := range lvl.Sectors[si].Tags {
				if t == tag {
					lvl.Sectors[si].X3DFloors = append(lvl.Sectors[si].X3DFloors, ControlSector{Sector: control, Flags: flags})
					break
				}
			}
		}
	}
}

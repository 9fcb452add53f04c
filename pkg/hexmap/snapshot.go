package hexmap

// MapData is the map part of a sensor snapshot: full dimensions plus the
// objects currently visible to the agent.
type MapData struct {
	Width   int         `json:"width"`
	Height  int         `json:"height"`
	Objects []MapObject `json:"objects"`
}

// Snapshot is the sensor data returned by the game server after every
// request.
type Snapshot struct {
	WorldCurrentTime float64  `json:"world_current_time"`
	IsDead           bool     `json:"is_dead"`
	Location         Location `json:"location"`
	MyArmy           Army     `json:"my_army"`
	MyTreasury       Treasury `json:"my_treasury"`
	MyRespawnSide    string   `json:"my_respawn_side"`
	Map              MapData  `json:"map"`
}

// ObjectAt returns the observed object at loc, or nil when the cell is not
// in the snapshot.
func (s *Snapshot) ObjectAt(loc Location) *MapObject {
	for i := range s.Map.Objects {
		if s.Map.Objects[i].Location == loc {
			return &s.Map.Objects[i]
		}
	}
	return nil
}

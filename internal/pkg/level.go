package pkg

// 等级门槛表，严格递增。调整时只改这里，LevelFor 不动。
var levelTable = []struct {
	Threshold int64
	Name      string
}{
	{0, "Newcomer"},
	{100, "Casual"},
	{300, "Regular"},
	{700, "Enthusiast"},
	{1500, "Veteran"},
	{3000, "Expert"},
	{6000, "Master"},
	{10000, "Legend"},
}

type LevelInfo struct {
	Level           int    `json:"level"` // 从 1 开始
	Name            string `json:"name"`
	XpForCurrent    int64  `json:"xp_for_current"`
	XpForNext       int64  `json:"xp_for_next"` // 满级时等于当前门槛
	ProgressPercent int    `json:"progress_percent"`
	IsMaxLevel      bool   `json:"is_max_level"`
}

// LevelFor 纯函数：总经验换算等级与进度
func LevelFor(xpTotal int64) LevelInfo {
	if xpTotal < 0 {
		xpTotal = 0
	}
	idx := 0
	for i := range levelTable {
		if xpTotal >= levelTable[i].Threshold {
			idx = i
		}
	}
	info := LevelInfo{
		Level:        idx + 1,
		Name:         levelTable[idx].Name,
		XpForCurrent: levelTable[idx].Threshold,
	}
	if idx == len(levelTable)-1 {
		info.IsMaxLevel = true
		info.XpForNext = levelTable[idx].Threshold
		info.ProgressPercent = 100
		return info
	}
	info.XpForNext = levelTable[idx+1].Threshold
	span := info.XpForNext - info.XpForCurrent
	info.ProgressPercent = int((xpTotal - info.XpForCurrent) * 100 / span)
	return info
}

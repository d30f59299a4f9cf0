package format

import "github.com/rickgao/dex-buybot/internal/model"

type tierStyle struct {
	color int
	emoji string
}

var tierStyles = map[model.Tier]tierStyle{
	model.TierLight:  {0x90EE90, "🐍"},
	model.TierMedium: {0x32CD32, "🐍"},
	model.TierStrong: {0x228B22, "🐍💰"},
	model.TierMax:    {0x00FF00, "🐍🚀"},
}

// TierFor maps a USD spend to a severity tier.
func TierFor(usd float64) model.Tier {
	switch {
	case usd < 10:
		return model.TierLight
	case usd < 50:
		return model.TierMedium
	case usd < 100:
		return model.TierStrong
	default:
		return model.TierMax
	}
}

func styleFor(t model.Tier) tierStyle {
	if s, ok := tierStyles[t]; ok {
		return s
	}
	return tierStyles[model.TierLight]
}

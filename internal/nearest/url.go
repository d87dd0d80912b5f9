package nearest

import (
	"fmt"
	"math"
)

// ucscURL builds a UCSC Genome Browser link whose viewport is
// expanded so the queried interval occupies viewWindow of the window,
// per spec §4.3's URL derivation rule.
func ucscURL(speciesGenome, chr string, qs, qe int64, viewWindow float64) string {
	peakLen := float64(qe - qs)
	expand := peakLen / ((1 - viewWindow) / 2)

	ws := int64(math.Floor(float64(qs) - expand))
	if ws < 1 {
		ws = 1
	}
	we := int64(math.Floor(float64(qe) + expand))

	return fmt.Sprintf(
		"https://genome.ucsc.edu/cgi-bin/hgTracks?db=%s&position=%s:%d-%d&highlight=%s:%d-%d",
		speciesGenome, chr, ws, we, chr, qs, qe,
	)
}

package sample

import (
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// Excerpt copies the part of mf starting at fromTick, keeping at most
// maxNotes note ons per track. Meta and controller events from before the
// start are kept and pulled up to the start so the excerpt plays with the
// right tempo and program. Notes still sounding at the cut get their
// note off.
func Excerpt(mf *smf.SMF, fromTick uint64, maxNotes int) *smf.SMF {
	res := smf.New()
	res.TimeFormat = mf.TimeFormat

	for _, track := range mf.Tracks {
		var out smf.Track
		var absTicks, lastTicks uint64
		sounding := make(map[[2]uint8]bool)
		notes := 0
		done := false

		for _, evt := range track {
			absTicks += uint64(evt.Delta)
			if isEndOfTrack(evt.Message) {
				break
			}
			var ch, key, vel uint8
			isOn := evt.Message.GetNoteOn(&ch, &key, &vel) && vel > 0
			switch {
			case isOn:
				if absTicks < fromTick || done {
					continue
				}
				out.Add(uint32(absTicks-later(lastTicks, fromTick)), evt.Message)
				lastTicks = absTicks
				sounding[[2]uint8{ch, key}] = true
				notes++
				done = notes >= maxNotes
			case evt.Message.GetNoteOn(&ch, &key, &vel) || evt.Message.GetNoteOff(&ch, &key, &vel):
				if !sounding[[2]uint8{ch, key}] {
					continue
				}
				out.Add(uint32(absTicks-later(lastTicks, fromTick)), midi.NoteOff(ch, key))
				lastTicks = absTicks
				delete(sounding, [2]uint8{ch, key})
			default:
				if absTicks < fromTick {
					out.Add(0, evt.Message)
					continue
				}
				if done {
					continue
				}
				out.Add(uint32(absTicks-later(lastTicks, fromTick)), evt.Message)
				lastTicks = absTicks
			}
			if done && len(sounding) == 0 {
				break
			}
		}
		out.Close(0)
		res.Add(out)
	}
	return res
}

func isEndOfTrack(msg smf.Message) bool {
	return len(msg) >= 2 && msg[0] == 0xFF && msg[1] == 0x2F
}

func later(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

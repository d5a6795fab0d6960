package prose

// synonymEntry maps an everyday word to its mythic-register alternatives.
type synonymEntry struct {
	word     string
	synonyms []string
}

// emotionEntry holds the phrases for one named emotion.
type emotionEntry struct {
	label   string
	phrases []string
}

// Order matters: it fixes the draw sequence for a seeded source.
var synonyms = []synonymEntry{
	{"walked", []string{"journeyed", "traversed", "wandered"}},
	{"saw", []string{"beheld", "witnessed", "perceived"}},
	{"felt", []string{"was stirred by", "sensed deeply", "was moved by"}},
	{"happy", []string{"illuminated with joy", "blessed by fortune", "touched by light"}},
	{"sad", []string{"touched by shadow", "visited by melancholy", "embraced by twilight"}},
	{"angry", []string{"consumed by fire", "stirred by tempest", "blazing"}},
	{"scared", []string{"gripped by uncertainty", "facing the unknown", "tested by shadow"}},
	{"love", []string{"sacred bond", "eternal flame", "cosmic connection"}},
	{"friend", []string{"kindred spirit", "fellow traveler", "soul companion"}},
	{"family", []string{"ancestral circle", "sacred bond", "eternal lineage"}},
	{"work", []string{"calling", "sacred duty", "destined path"}},
	{"home", []string{"sanctuary", "sacred space", "fortress of peace"}},
	{"day", []string{"cycle of light", "sun's arc", "golden hours"}},
	{"night", []string{"velvet darkness", "star-crowned hours", "lunar reign"}},
}

var openings = []string{
	"In the tapestry of your existence,",
	"When the stars aligned,",
	"As fate's thread wove forward,",
	"At the crossroads of destiny,",
	"In the sacred theater of life,",
	"Upon the stage of your journey,",
	"As the cosmos witnessed,",
	"In that eternal moment,",
}

// Phrases must not contain a word from synonyms, or substitution would
// appear to have missed it.
var emotions = []emotionEntry{
	{"Joy", []string{"the light within you blazed", "your spirit soared like a phoenix", "golden radiance filled your soul"}},
	{"Sorrow", []string{"twilight touched your spirit", "you passed through shadow's valley", "tears became rivers of wisdom"}},
	{"Courage", []string{"you stood as an unwavering flame", "your heart beat with warrior's resolve", "you faced the tempest unbowed"}},
	{"Fear", []string{"shadows tested your resolve", "you confronted the unknown depths", "darkness whispered, yet you listened"}},
	{"Love", []string{"your heart expanded like the cosmos", "sacred bonds were forged", "two souls recognized their eternal dance"}},
	{"Anger", []string{"fire coursed through your veins", "thunder echoed in your spirit", "righteous flame burned within"}},
	{"Peace", []string{"serenity descended like stardust", "your soul found its harbor", "stillness embraced your being"}},
	{"Wonder", []string{"the universe revealed its mysteries", "awe painted your perception", "magic touched the mundane"}},
	{"Hope", []string{"dawn broke upon your horizon", "tomorrow's promise illuminated today", "light pierced the darkness"}},
	{"Loneliness", []string{"you trod solitary paths", "silence became your companion", "in isolation, you found your depths"}},
	{"Gratitude", []string{"blessings rained upon your awareness", "abundance revealed itself", "your heart overflowed with thanksgiving"}},
	{"Determination", []string{"iron resolve forged your will", "you set your course by the stars", "nothing could deter your path"}},
}

const (
	unnamedInfluence = "your spirit was moved by forces unseen"
	unknownEmotion   = " stirred within you"
	memoryClosing    = "This moment was inscribed in the eternal ledger of your becoming."
)

var letterOpenings = []string{
	"Beloved traveler of time,",
	"Dear past self,",
	"To the one I once was,",
	"My cherished former self,",
	"Through the mists of memory, I see you,",
}

var letterMiddles = []string{
	"The path you walk leads to places more wondrous than you can imagine.",
	"What seems uncertain now will reveal its purpose in time.",
	"The seeds you plant today bloom in gardens you cannot yet see.",
	"Your struggles forge the strength that will carry you through.",
	"The love you seek is already finding its way to you.",
}

var letterClosings = []string{
	"Trust the journey, for I am proof that you will find your way.",
	"Keep your heart open; the best is yet to unfold.",
	"Walk forward with courage; I await you on the other side.",
	"The person you are becoming is worthy of every dream you hold.",
	"All is well. All will be well. The cosmos holds you gently.",
}

// EmotionLabels returns the emotion names the engine has curated phrases for.
func EmotionLabels() []string {
	labels := make([]string, len(emotions))
	for i, e := range emotions {
		labels[i] = e.label
	}
	return labels
}

package quiz

// Recommendation is the guidance returned for a completed aptitude quiz.
type Recommendation struct {
	Stream     string   `json:"stream"`
	Careers    []string `json:"careers"`
	Colleges   []string `json:"colleges"`
	Assessment string   `json:"assessment"`
	Strengths  []string `json:"strengths"`
}

type Question struct {
	Question string   `json:"question,omitempty"`
	Options  []string `json:"options,omitempty"`
	Category string   `json:"category"`
}

// Categories in tie-break order: on equal scores the later one wins.
var Categories = []string{"logical", "creative", "analytical", "social", "practical"}

const defaultCategory = "analytical"

// Score counts, per category, the questions that have an answer at the
// same index. Categories outside the fixed set are counted after it.
func Score(answers []any, questions []Question) (keys []string, scores map[string]int) {
	scores = make(map[string]int, len(Categories))
	keys = append(keys, Categories...)
	for _, c := range Categories {
		scores[c] = 0
	}

	for i, q := range questions {
		if i >= len(answers) {
			continue
		}
		if _, ok := scores[q.Category]; !ok {
			keys = append(keys, q.Category)
		}
		scores[q.Category]++
	}
	return keys, scores
}

// TopCategory picks the highest score. Ties go to the later category.
func TopCategory(keys []string, scores map[string]int) string {
	top := keys[0]
	for _, k := range keys[1:] {
		if !(scores[top] > scores[k]) {
			top = k
		}
	}
	return top
}

// Recommend maps the quiz to the rule table entry of its top category,
// falling back to the analytical entry for unknown categories.
func Recommend(answers []any, questions []Question) (Recommendation, string) {
	top := TopCategory(Score(answers, questions))
	rec, ok := rules[top]
	if !ok {
		top = defaultCategory
		rec = rules[defaultCategory]
	}
	return rec.clone(), top
}

func (r Recommendation) clone() Recommendation {
	r.Careers = append([]string(nil), r.Careers...)
	r.Colleges = append([]string(nil), r.Colleges...)
	r.Strengths = append([]string(nil), r.Strengths...)
	return r
}

var rules = map[string]Recommendation{
	"analytical": {
		Stream:     "Science (PCM)",
		Careers:    []string{"Software Engineer", "Data Scientist", "Mechanical Engineer", "Civil Engineer", "Robotics Engineer", "Research Scientist"},
		Colleges:   []string{"IIT Delhi", "IIT Bombay", "BITS Pilani", "NIT Trichy", "IIIT Hyderabad"},
		Assessment: "You have strong analytical and problem-solving skills. Your ability to break down complex problems and think logically makes you well-suited for technical and engineering fields.",
		Strengths:  []string{"Logical Thinking", "Problem Solving", "Analytical Skills", "Attention to Detail"},
	},
	"creative": {
		Stream:     "Arts/Design",
		Careers:    []string{"Graphic Designer", "UI/UX Designer", "Content Creator", "Marketing Manager", "Architect", "Fashion Designer"},
		Colleges:   []string{"NID Ahmedabad", "NIFT Delhi", "Pearl Academy", "MIT Institute of Design", "Symbiosis Institute of Design"},
		Assessment: "You have a creative and innovative mindset. Your ability to think outside the box and visualize unique solutions makes you ideal for creative industries.",
		Strengths:  []string{"Creative Thinking", "Innovation", "Visual Design", "Artistic Expression"},
	},
	"social": {
		Stream:     "Arts/Commerce",
		Careers:    []string{"Psychologist", "Social Worker", "Teacher", "HR Manager", "Counselor", "NGO Manager"},
		Colleges:   []string{"Delhi University", "Tata Institute of Social Sciences", "Jamia Millia Islamia", "Christ University", "Fergusson College"},
		Assessment: "You have excellent interpersonal skills and empathy. Your ability to understand and connect with people makes you perfect for service-oriented and people-focused careers.",
		Strengths:  []string{"Communication", "Empathy", "Leadership", "Team Collaboration"},
	},
	"logical": {
		Stream:     "Science (PCM/PCB)",
		Careers:    []string{"Doctor", "Biotechnology Specialist", "Research Scientist", "Pharmaceutical Scientist", "Forensic Scientist"},
		Colleges:   []string{"AIIMS Delhi", "CMC Vellore", "JIPMER Puducherry", "IIT Bombay", "IISc Bangalore"},
		Assessment: "You possess strong logical reasoning and scientific thinking abilities. Your methodical approach and curiosity about how things work suit you well for medical and scientific fields.",
		Strengths:  []string{"Logical Reasoning", "Scientific Thinking", "Research Skills", "Critical Analysis"},
	},
	"practical": {
		Stream:     "Commerce/Vocational",
		Careers:    []string{"Business Analyst", "Financial Advisor", "Entrepreneur", "Operations Manager", "Chartered Accountant"},
		Colleges:   []string{"Shri Ram College of Commerce", "St. Xavier's College Mumbai", "Loyola College Chennai", "IIM Ahmedabad (after graduation)", "ISB Hyderabad (after graduation)"},
		Assessment: "You have a practical and results-oriented approach. Your ability to apply knowledge in real-world situations and focus on tangible outcomes makes you ideal for business and finance careers.",
		Strengths:  []string{"Practical Thinking", "Business Acumen", "Decision Making", "Goal Orientation"},
	},
}

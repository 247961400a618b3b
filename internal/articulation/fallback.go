package articulation

import "chemlab/internal/chemistry"

var fallbackContent = map[chemistry.ReactionType]Content{
	chemistry.TypeNeutralization: {
		Explanation:      "In a neutralization reaction, an acid (H+ donor) reacts with a base (OH- donor) to form salt and water. The H+ ions from the acid combine with OH- ions from the base, producing water and ionic salts. The solution becomes less acidic or basic, approaching neutral pH 7, and typically releases heat energy (exothermic). This is a fundamental acid-base reaction in chemistry.",
		SafetyTips:       "Always add acid to base slowly (never the reverse) to prevent violent reactions and splashing. Wear goggles and gloves. If you spill acid or base, neutralize with the opposite substance before cleanup. Use proper ventilation.",
		Concept:          "Acid-Base Neutralization Reaction - An exothermic reaction where hydrogen ions (H+) from an acid combine with hydroxide ions (OH-) from a base to form water and a salt. This balances pH and is essential in chemistry and industry.",
		RealWorldExample: "Antacids (like calcium carbonate or sodium bicarbonate) neutralize excess stomach acid to relieve heartburn. Industrial acid-base neutralization is used in water treatment to adjust pH levels in drinking water and wastewater.",
	},
	chemistry.TypeSingleDisplacement: {
		Explanation:      "In a displacement reaction, a more reactive element replaces a less reactive element in a compound. The reactivity of metals follows a predictable order - more reactive metals can displace less reactive metals from their salts or acids. This occurs because the more reactive metal has a stronger tendency to lose electrons and form positive ions, driving the reaction forward.",
		SafetyTips:       "Handle reactive metals carefully as they can react violently with water or acid. Never touch reactive metals with bare hands. Dispose of metal salts and unreacted metals according to chemical waste guidelines. Work in a well-ventilated area or fume hood.",
		Concept:          "Single Displacement (Substitution) Reaction - A reaction where a more reactive element displaces a less reactive element from a compound, based on relative reactivity. This demonstrates the electrochemical series and electron transfer principles in redox reactions.",
		RealWorldExample: "The extraction of pure metals from ores uses displacement principles - for example, carbon displaces metals from their oxides in industrial smelting. Galvanizing (coating steel with zinc) protects against rust through displacement chemistry. Cathodic protection in pipelines uses similar displacement principles.",
	},
	chemistry.TypePrecipitation: {
		Explanation:      "A precipitation reaction occurs when two soluble ionic compounds combine to form an insoluble solid (precipitate) that separates from the solution. The insoluble product forms because the ions have reduced solubility when combined, exceeding the solubility product constant. The precipitate settles out as a distinct solid phase, while the solution retains dissolved ions.",
		SafetyTips:       "Avoid skin contact with precipitates as some are toxic. Use appropriate gloves and eye protection. Some precipitates (like barium sulfate) are harmless, while others require careful disposal. Always wash hands after handling and dispose of chemical waste in designated containers.",
		Concept:          "Precipitation Reaction - A reaction between soluble ionic compounds that produces an insoluble solid (precipitate) when ions combine. The driving force is the formation of a compound with low solubility, and these reactions are essential for analytical chemistry and industrial processes.",
		RealWorldExample: "Water treatment plants use precipitation reactions to remove hardness (calcium and magnesium ions) and contaminating ions. In analytical chemistry, precipitation is used to identify and quantify specific ions. Photography and pharmaceutical manufacturing rely on precipitation for product purification.",
	},
	chemistry.TypeRedox: {
		Explanation:      "A redox (reduction-oxidation) reaction involves the transfer of electrons between reactants. One reactant is oxidized (loses electrons) while another is reduced (gains electrons). Oxidation states change as electrons transfer, and the number of electrons lost must equal the number gained. These reactions release or absorb energy depending on whether bonds are broken or formed.",
		SafetyTips:       "Many redox reactions are vigorous and can release significant heat or gases. Ensure proper ventilation, use appropriate glassware, and never mix incompatible oxidizing and reducing agents. Always follow proper chemical handling procedures and safety guidelines.",
		Concept:          "Redox (Oxidation-Reduction) Reaction - A reaction where electrons are transferred from one reactant (reducing agent) to another (oxidizing agent), causing changes in oxidation states. These reactions are fundamental to chemistry, including combustion, corrosion, and photosynthesis.",
		RealWorldExample: "Combustion reactions are redox reactions that power engines and generate electricity. Cellular respiration (oxidizing glucose) provides energy for all living organisms. Batteries and fuel cells operate through controlled redox reactions to generate electrical energy.",
	},
}

var defaultFallback = Content{
	Explanation:      "These substances are being mixed together. Observe any changes in color, temperature, physical state, or other properties. Even if no obvious reaction occurs, molecular interactions may be happening at the particulate level that aren't easily visible.",
	SafetyTips:       "Always wear appropriate personal protective equipment (goggles, gloves, lab coat). Work in a well-ventilated area. Read safety data sheets for all chemicals before handling. Know the location of emergency equipment.",
	Concept:          "Chemical Mixture or Interaction - A combination of substances that may or may not undergo observable chemical changes. Understanding interactions between substances is fundamental to chemistry.",
	RealWorldExample: "Understanding how different chemicals interact is essential in pharmacy, food science, environmental remediation, and countless industrial processes where controlled mixing produces desired products.",
}

// Fallback returns the static narrative for a reaction type. Types without a
// dedicated block get the generic mixture text. The returned Content carries
// no visual metadata.
func Fallback(t chemistry.ReactionType) *Content {
	c, ok := fallbackContent[t]
	if !ok {
		c = defaultFallback
	}
	return &c
}

// catalog_seed.go - Static seed for the local fallback catalog

package storage

// catalogSeed covers common OTC and high-volume prescription medicines so
// the pipeline still resolves something when every networked source is down.
var catalogSeed = []CatalogEntry{
	{
		BrandName:         "Tylenol",
		GenericName:       "Acetaminophen",
		ActiveIngredients: []string{"acetaminophen"},
		MedicineType:      "tablet",
		Manufacturer:      "Kenvue",
		CommonUses:        []string{"Pain relief", "Fever reduction"},
		Warnings:          []string{"Liver damage risk above 4000 mg/day", "Avoid combining with alcohol"},
	},
	{
		BrandName:         "Advil",
		GenericName:       "Ibuprofen",
		ActiveIngredients: []string{"ibuprofen"},
		MedicineType:      "tablet",
		Manufacturer:      "Haleon",
		CommonUses:        []string{"Pain relief", "Inflammation", "Fever reduction"},
		Warnings:          []string{"May cause stomach bleeding", "Take with food"},
	},
	{
		BrandName:         "Aleve",
		GenericName:       "Naproxen",
		ActiveIngredients: []string{"naproxen sodium"},
		MedicineType:      "tablet",
		Manufacturer:      "Bayer",
		CommonUses:        []string{"Pain relief", "Inflammation"},
		Warnings:          []string{"May cause stomach bleeding", "Cardiovascular risk with long-term use"},
	},
	{
		BrandName:         "Bayer Aspirin",
		GenericName:       "Aspirin",
		ActiveIngredients: []string{"aspirin"},
		MedicineType:      "tablet",
		Manufacturer:      "Bayer",
		CommonUses:        []string{"Pain relief", "Blood thinning", "Fever reduction"},
		Warnings:          []string{"Reye's syndrome risk in children", "Bleeding risk"},
	},
	{
		BrandName:         "Benadryl",
		GenericName:       "Diphenhydramine",
		ActiveIngredients: []string{"diphenhydramine hydrochloride"},
		MedicineType:      "capsule",
		Manufacturer:      "Kenvue",
		CommonUses:        []string{"Allergy relief", "Sleep aid"},
		Warnings:          []string{"Causes drowsiness", "Do not drive after taking"},
	},
	{
		BrandName:         "Claritin",
		GenericName:       "Loratadine",
		ActiveIngredients: []string{"loratadine"},
		MedicineType:      "tablet",
		Manufacturer:      "Bayer",
		CommonUses:        []string{"Allergy relief"},
		Warnings:          []string{"May cause headache or dry mouth"},
	},
	{
		BrandName:         "Zyrtec",
		GenericName:       "Cetirizine",
		ActiveIngredients: []string{"cetirizine hydrochloride"},
		MedicineType:      "tablet",
		Manufacturer:      "Kenvue",
		CommonUses:        []string{"Allergy relief"},
		Warnings:          []string{"May cause drowsiness"},
	},
	{
		BrandName:         "Pepto-Bismol",
		GenericName:       "Bismuth subsalicylate",
		ActiveIngredients: []string{"bismuth subsalicylate"},
		MedicineType:      "liquid",
		Manufacturer:      "Procter & Gamble",
		CommonUses:        []string{"Upset stomach", "Diarrhea", "Heartburn"},
		Warnings:          []string{"May darken stool or tongue", "Contains salicylate"},
	},
	{
		BrandName:         "Tums",
		GenericName:       "Calcium carbonate",
		ActiveIngredients: []string{"calcium carbonate"},
		MedicineType:      "tablet",
		Manufacturer:      "Haleon",
		CommonUses:        []string{"Heartburn", "Acid indigestion"},
		Warnings:          []string{"Do not exceed labeled daily dose"},
	},
	{
		BrandName:         "Robitussin DM",
		GenericName:       "Dextromethorphan/Guaifenesin",
		ActiveIngredients: []string{"dextromethorphan", "guaifenesin"},
		MedicineType:      "liquid",
		Manufacturer:      "Haleon",
		CommonUses:        []string{"Cough suppression", "Chest congestion"},
		Warnings:          []string{"Do not combine with MAO inhibitors"},
	},
	{
		BrandName:         "Glucophage",
		GenericName:       "Metformin",
		ActiveIngredients: []string{"metformin hydrochloride"},
		MedicineType:      "tablet",
		Manufacturer:      "Merck",
		CommonUses:        []string{"Type 2 diabetes"},
		Warnings:          []string{"Lactic acidosis risk", "Take with meals"},
	},
	{
		BrandName:         "Prinivil",
		GenericName:       "Lisinopril",
		ActiveIngredients: []string{"lisinopril"},
		MedicineType:      "tablet",
		Manufacturer:      "Merck",
		CommonUses:        []string{"High blood pressure", "Heart failure"},
		Warnings:          []string{"May cause dry cough", "Monitor potassium levels"},
	},
	{
		BrandName:         "Lipitor",
		GenericName:       "Atorvastatin",
		ActiveIngredients: []string{"atorvastatin calcium"},
		MedicineType:      "tablet",
		Manufacturer:      "Pfizer",
		CommonUses:        []string{"High cholesterol"},
		Warnings:          []string{"Muscle pain may indicate a serious side effect", "Avoid grapefruit juice"},
	},
}

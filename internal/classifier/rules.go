package classifier

// Category names produced by the built-in rules.
const (
	FastFood           = "FAST_FOOD"
	Restaurant         = "RESTAURANT"
	Cafe               = "CAFE"
	Desserts           = "DESSERTS"
	Groceries          = "GROCERIES"
	Zabka              = "ZABKA"
	Pharmacy           = "PHARMACY"
	BeautyPersonalCare = "BEAUTY_PERSONAL_CARE"
	Fuel               = "FUEL"
	ParkingTolls       = "PARKING_TOLLS"
	TransportRidehail  = "TRANSPORT_RIDEHAIL"
	Entertainment      = "ENTERTAINMENT"
	Subscription       = "SUBSCRIPTION"
	HomeGoods          = "HOME_GOODS"
	FitnessWellness    = "FITNESS_WELLNESS"
	FlowersGifts       = "FLOWERS_GIFTS"
	GovernmentFees     = "GOVERNMENT_FEES"
	OnlineServices     = "ONLINE_SERVICES"
	Transfer           = "TRANSFER"
)

var defaultRules = []Rule{
	R(`\bMCDONALD|MC\s*DONALD|KFC\b|POPEYES|BURGER\s*KING|DURMAK\s*KEBAB|MACZANE\b|SALAD\s*STORY\b`, FastFood),

	R(`\bRESTAURACJA\b`, Restaurant),
	R(`PIZZERIA`, Restaurant),
	R(`SUSHI`, Restaurant),
	R(`THAI`, Restaurant),
	R(`NAI\s*THA`, Restaurant),
	R(`CHMELI\s*SUNELI`, Restaurant),
	R(`\bNURT\b`, Restaurant),
	R(`\bMASISO\b`, Restaurant),
	R(`GAJOWA\s*12\b`, Restaurant),
	R(`BAR\s*A\s*BOO`, Restaurant),
	R(`BURGS\s*CHEF`, Restaurant),
	R(`RAFAMARINA`, Restaurant),
	R(`\bTATA\b`, Restaurant),
	R(`TIFFANY\s*FRESH`, Restaurant),
	R(`FRESH\s*BAR`, Restaurant),
	R(`VEMAT\s*A(?:UTOMATY|UTMOATY)`, Restaurant),
	R(`\bRUSALKA\b`, Restaurant),
	R(`SISI\s*FOOD`, Restaurant),
	R(`\bGOSPODA\b`, Restaurant),

	R(`\bKAWIARNIA\b`, Cafe),
	R(`\bKAWIARENKA\b`, Cafe),
	R(`\bCOFFEE\b`, Cafe),
	R(`\bSTARBUCKS\b`, Cafe),
	R(`PIJALNIA\s*CZEKOLADY`, Cafe),
	R(`\bTCHIBO\b`, Cafe),

	R(`\bLODY\b`, Desserts),
	R(`YOGOLAND`, Desserts),
	R(`SWEET\s*FACTORY`, Desserts),
	R(`CUKIERNIA`, Desserts),
	R(`KARMELLO`, Desserts),
	R(`MOJA\s*SLODYCZ`, Desserts),
	R(`DESEROWNIA`, Desserts),
	R(`\bWYPIEKI\b`, Desserts),

	R(`\bLIDL\b`, Groceries),
	R(`BIEDRONKA`, Groceries),
	R(`CARREFOUR`, Groceries),
	R(`\bALDI\b`, Groceries),
	R(`AUCHAN`, Groceries),
	R(`\bDINO\b`, Groceries),
	R(`\bNETTO\b`, Groceries),
	R(`STOKROTKA`, Groceries),
	R(`CHATA\s*POLSKA`, Groceries),
	R(`EUROSPAR`, Groceries),
	R(`\bSPAR\b`, Groceries),
	R(`KAUFLAND`, Groceries),

	R(`\bZABKA\b`, Zabka),

	R(`APTEKA`, Pharmacy),
	R(`SUPER\s*PHARM`, Pharmacy),
	R(`\bHEBE\b`, Pharmacy),
	R(`\bDM\b`, Pharmacy),
	R(`\bOLMED\b`, Pharmacy),

	R(`\bROSSMANN\b`, BeautyPersonalCare),
	R(`NEO\s*NAIL`, BeautyPersonalCare),
	R(`\bRITUALS\b`, BeautyPersonalCare),
	R(`\bSEPHORA\b`, BeautyPersonalCare),
	R(`\bDOUGLAS\b`, BeautyPersonalCare),
	R(`PEPCO\s*BEAUTY?`, BeautyPersonalCare),

	R(`\bORLEN\b`, Fuel),
	R(`STACJA\s*PALIW`, Fuel),
	R(`\bBP\b`, Fuel),
	R(`\bMOYA\b`, Fuel),
	R(`\bAVIA\b`, Fuel),
	R(`\bSHELL\b`, Fuel),

	R(`\bPARKING\b`, ParkingTolls),
	R(`KASA\s*PARKINGOWA`, ParkingTolls),
	R(`\bSPP\b`, ParkingTolls),
	R(`SYSTEMY\s*POB\s*OPLAT`, ParkingTolls),
	R(`POSIR\s*MLODZIEZOWY\s*O`, ParkingTolls),

	R(`\bBOLT\b`, TransportRidehail),
	R(`\bUBER\b`, TransportRidehail),
	R(`\bJAKDOJADE\b`, TransportRidehail),
	R(`\bBILET\b`, TransportRidehail),

	R(`CINEMA\s*CITY`, Entertainment),
	R(`\bKINO\b`, Entertainment),
	R(`\bMUZEUM\b`, Entertainment),
	R(`GMACH\s*GLOWNY\s*MNP`, Entertainment),
	R(`\bBOSIR\b`, Entertainment),

	R(`\bSPOTIFY\b`, Subscription),
	R(`AMAZON\s*PRIME`, Subscription),
	R(`\bNETFLIX\b`, Subscription),
	R(`YOUTUBE\s*PREMIUM`, Subscription),

	R(`\bIKEA\b`, HomeGoods),
	R(`\bHOMLA\b`, HomeGoods),
	R(`\bPEPCO\b`, HomeGoods),
	R(`\bDEALZ\b`, HomeGoods),
	R(`\bACTION\b`, HomeGoods),
	R(`TK\s*MAXX`, HomeGoods),
	R(`\bSINSAY\b`, HomeGoods),
	R(`\bKIK\b`, HomeGoods),
	R(`\bH&M\b`, HomeGoods),

	R(`\bZDROFIT\b`, FitnessWellness),
	R(`TERMY\s*MALTANSKIE`, FitnessWellness),
	R(`\bMASAZ\b`, FitnessWellness),
	R(`\bFITNESS\b`, FitnessWellness),

	R(`\bKWIACIARNIA\b`, FlowersGifts),
	R(`\bFLOWERS\b`, FlowersGifts),
	R(`BALLO?N\b`, FlowersGifts),
	R(`\bPREZENT\b`, FlowersGifts),
	R(`\bGIFT\b`, FlowersGifts),
	R(`\bZRZUTKA\b`, FlowersGifts),

	R(`\bURZAD\b`, GovernmentFees),
	R(`PODATK`, GovernmentFees),
	R(`OPLATE`, GovernmentFees),
	R(`\bOPLATA\b`, GovernmentFees),

	R(`^WWW\.`, OnlineServices),
	R(`\.PL\b`, OnlineServices),
	R(`\.COM\b`, OnlineServices),

	R(`\bPRZELEW\b`, Transfer),
	R(`\bBLIK\b`, Transfer),
}

package categories

var defaults = []Category{
	{ID: "1", Name: "GROCERIES", Description: "Zakupy spożywcze"},
	{ID: "2", Name: "ZABKA", Description: "Convenience store"},
	{ID: "3", Name: "PHARMACY", Description: "Apteka, leki"},
	{ID: "4", Name: "FUEL", Description: "Paliwo"},
	{ID: "5", Name: "PARKING_TOLLS", Description: "Parkowanie, opłaty drogowe"},
	{ID: "6", Name: "TRANSPORT_RIDEHAIL", Description: "Uber, Bolt, taxi"},
	{ID: "7", Name: "FAST_FOOD", Description: "Fast food, quick meals"},
	{ID: "8", Name: "RESTAURANT", Description: "Restauracje"},
	{ID: "9", Name: "CAFE", Description: "Kawiarnie"},
	{ID: "10", Name: "DESSERTS", Description: "Słodycze, desery"},
	{ID: "11", Name: "ENTERTAINMENT", Description: "Rozrywka, kino"},
	{ID: "12", Name: "GIFTS", Description: "Prezenty"},
	{ID: "13", Name: "HOME_GOODS", Description: "Rzeczy do domu"},
	{ID: "14", Name: "BEAUTY_PERSONAL_CARE", Description: "Kosmetyki, higiena"},
	{ID: "15", Name: "GOVERNMENT_FEES", Description: "Opłaty urzędowe"},
	{ID: "16", Name: "FITNESS_WELLNESS", Description: "Siłownia, wellness"},
	{ID: "17", Name: "ONLINE_SERVICES", Description: "Usługi online"},
	{ID: "18", Name: "TRANSFER", Description: "Przelewy, transfery"},
}

var defaultDirectory = MustDirectory(defaults)

// DefaultList is the built-in list used when the directory source fails.
func DefaultList() []Category {
	return append([]Category(nil), defaults...)
}

// Default returns the built-in directory.
func Default() *Directory {
	return defaultDirectory
}

package schema

// EngineFieldType describes one concrete field implementation available in
// the engine's field-type catalog. The registry's auto-discovery pass
// enumerates these and synthesizes a generic definition for each.
type EngineFieldType struct {
	Class              string
	DisplayName        string
	SettingsAttributes []string
}

// Engine class identifiers for the built-in field implementations.
const (
	ClassAddresses    = "Addresses"
	ClassAssets       = "Assets"
	ClassButtonGroup  = "ButtonGroup"
	ClassCategories   = "Categories"
	ClassCheckboxes   = "Checkboxes"
	ClassColor        = "Color"
	ClassContentBlock = "ContentBlock"
	ClassCountry      = "Country"
	ClassDate         = "Date"
	ClassDropdown     = "Dropdown"
	ClassEmail        = "Email"
	ClassEntries      = "Entries"
	ClassIcon         = "Icon"
	ClassJSON         = "Json"
	ClassLightswitch  = "Lightswitch"
	ClassLink         = "Link"
	ClassMatrix       = "Matrix"
	ClassMoney        = "Money"
	ClassMultiSelect  = "MultiSelect"
	ClassNumber       = "Number"
	ClassPlainText    = "PlainText"
	ClassRadioButtons = "RadioButtons"
	ClassRange        = "Range"
	ClassRichText     = "RichText"
	ClassTable        = "Table"
	ClassTags         = "Tags"
	ClassTime         = "Time"
	ClassUsers        = "Users"
)

// EngineCatalog lists every field class the engine ships. The order is
// alphabetical by class name and stable across releases.
func EngineCatalog() []EngineFieldType {
	return []EngineFieldType{
		{Class: ClassAddresses, DisplayName: "Addresses"},
		{Class: ClassAssets, DisplayName: "Assets", SettingsAttributes: []string{"maxRelations", "minRelations", "viewMode", "allowedKinds", "restrictFiles", "sources"}},
		{Class: ClassButtonGroup, DisplayName: "Button Group", SettingsAttributes: []string{"options"}},
		{Class: ClassCategories, DisplayName: "Categories", SettingsAttributes: []string{"maxRelations", "sources"}},
		{Class: ClassCheckboxes, DisplayName: "Checkboxes", SettingsAttributes: []string{"options"}},
		{Class: ClassColor, DisplayName: "Color", SettingsAttributes: []string{"allowCustomColors", "palette"}},
		{Class: ClassContentBlock, DisplayName: "Content Block", SettingsAttributes: []string{"viewMode", "fields"}},
		{Class: ClassCountry, DisplayName: "Country"},
		{Class: ClassDate, DisplayName: "Date", SettingsAttributes: []string{"showDate", "showTime", "showTimeZone"}},
		{Class: ClassDropdown, DisplayName: "Dropdown", SettingsAttributes: []string{"options"}},
		{Class: ClassEmail, DisplayName: "Email", SettingsAttributes: []string{"placeholder"}},
		{Class: ClassEntries, DisplayName: "Entries", SettingsAttributes: []string{"maxRelations", "sources"}},
		{Class: ClassIcon, DisplayName: "Icon"},
		{Class: ClassJSON, DisplayName: "JSON"},
		{Class: ClassLightswitch, DisplayName: "Lightswitch", SettingsAttributes: []string{"default", "onLabel", "offLabel"}},
		{Class: ClassLink, DisplayName: "Link", SettingsAttributes: []string{"types", "showLabelField", "sources"}},
		{Class: ClassMatrix, DisplayName: "Matrix", SettingsAttributes: []string{"entryTypes", "minEntries", "maxEntries", "viewMode"}},
		{Class: ClassMoney, DisplayName: "Money", SettingsAttributes: []string{"currency", "showCurrency", "min", "max"}},
		{Class: ClassMultiSelect, DisplayName: "Multi-select", SettingsAttributes: []string{"options"}},
		{Class: ClassNumber, DisplayName: "Number", SettingsAttributes: []string{"min", "max", "decimals", "prefix", "suffix"}},
		{Class: ClassPlainText, DisplayName: "Plain Text", SettingsAttributes: []string{"multiline", "initialRows", "charLimit", "placeholder"}},
		{Class: ClassRadioButtons, DisplayName: "Radio Buttons", SettingsAttributes: []string{"options"}},
		{Class: ClassRange, DisplayName: "Range", SettingsAttributes: []string{"min", "max", "step", "suffix"}},
		{Class: ClassRichText, DisplayName: "Rich Text", SettingsAttributes: []string{"purifyHtml"}},
		{Class: ClassTable, DisplayName: "Table", SettingsAttributes: []string{"columns", "defaults", "minRows", "maxRows", "addRowLabel"}},
		{Class: ClassTags, DisplayName: "Tags", SettingsAttributes: []string{"source"}},
		{Class: ClassTime, DisplayName: "Time"},
		{Class: ClassUsers, DisplayName: "Users", SettingsAttributes: []string{"maxRelations", "sources"}},
	}
}

package taxonomy

import "cherrypick/internal/types"

// Template literal helpers keep the default table readable.
func allowT() Template { return Template{Status: types.StatusAllow} }
func denyT() Template  { return Template{Status: types.StatusDeny} }
func limitT(badges ...string) Template {
	return Template{Status: types.StatusLimit, Badges: badges}
}

func req(names ...types.ParamName) []types.ParamName { return names }

// DefaultEntries is the built-in risk taxonomy. Keys are the closed
// canonical vocabulary; the classifier prompt, the schema guard, and the
// resolver baseline all derive from this table. A taxonomy.json in the
// configured data dir replaces it wholesale.
var DefaultEntries = []Entry{
	// Liquids, gels, aerosols
	{Key: "liquid_toiletry", Label: "Liquid toiletry", Group: "liquids", Optional: req(types.ParamVolumeML), CarryOn: limitT("100ml", "1L zip bag"), Checked: allowT(), Synonyms: []string{"shampoo", "lotion", "toothpaste", "liquid soap", "conditioner"}},
	{Key: "aerosol_toiletry", Label: "Toiletry aerosol", Group: "liquids", Required: req(types.ParamVolumeML), CarryOn: limitT("100ml", "1L zip bag"), Checked: allowT(), Synonyms: []string{"hairspray", "deodorant spray", "shaving foam", "body spray"}},
	{Key: "aerosol_flammable", Label: "Flammable aerosol", Group: "liquids", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"spray paint", "wd-40", "butane spray"}},
	{Key: "perfume", Label: "Perfume / cologne", Group: "liquids", Optional: req(types.ParamVolumeML), CarryOn: limitT("100ml", "1L zip bag"), Checked: allowT(), Synonyms: []string{"cologne", "eau de toilette", "fragrance"}},
	{Key: "alcohol_beverage", Label: "Alcoholic beverage", Group: "liquids", Required: req(types.ParamVolumeML, types.ParamABVPercent), CarryOn: limitT("100ml", "1L zip bag"), Checked: limitT("5L", "24-70% ABV"), Synonyms: []string{"wine", "whisky", "whiskey", "soju", "vodka", "beer", "sake", "liquor"}},
	{Key: "alcohol_over_70", Label: "Alcohol over 70% ABV", Group: "liquids", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"everclear", "96% spirit", "overproof rum"}},
	{Key: "duty_free_liquid", Label: "Duty-free liquid (STEB)", Group: "liquids", Optional: req(types.ParamVolumeML), CarryOn: limitT("STEB sealed"), Checked: allowT(), Synonyms: []string{"duty free whisky", "airport shop liquor", "steb bag"}},
	{Key: "gel_food", Label: "Gel or sauce food", Group: "liquids", Optional: req(types.ParamVolumeML), CarryOn: limitT("100ml", "1L zip bag"), Checked: allowT(), Synonyms: []string{"jam", "honey", "sauce", "yogurt", "gochujang"}},
	{Key: "drinking_water", Label: "Bottled drink", Group: "liquids", Optional: req(types.ParamVolumeML), CarryOn: limitT("100ml"), Checked: allowT(), Synonyms: []string{"water bottle", "soda", "juice", "cold brew"}},
	{Key: "medication_liquid", Label: "Liquid medication", Group: "medical", Optional: req(types.ParamVolumeML), CarryOn: limitT("Reasonable quantity", "Declare at screening"), Checked: allowT(), Synonyms: []string{"cough syrup", "insulin", "saline", "eye drops"}},
	{Key: "baby_food", Label: "Baby food / formula", Group: "medical", Optional: req(types.ParamVolumeML), CarryOn: limitT("Reasonable quantity"), Checked: allowT(), Synonyms: []string{"formula", "breast milk", "baby puree"}},

	// Batteries and powered devices
	{Key: "power_bank", Label: "Power bank", Group: "battery", Required: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("100Wh"), Checked: denyT(), Synonyms: []string{"portable charger", "battery pack", "powerbank", "보조배터리"}},
	{Key: "lithium_battery_spare", Label: "Spare lithium-ion battery", Group: "battery", Required: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("100Wh", "Terminals protected"), Checked: denyT(), Synonyms: []string{"spare battery", "camera battery", "18650", "drone battery"}},
	{Key: "lithium_battery_installed", Label: "Device with installed battery", Group: "battery", Optional: req(types.ParamWattHours), CarryOn: allowT(), Checked: limitT("Switched off"), Synonyms: []string{"laptop", "tablet", "camera", "phone"}},
	{Key: "lithium_metal_spare", Label: "Spare lithium-metal battery", Group: "battery", Optional: req(types.ParamCount), CarryOn: limitT("2g lithium", "Terminals protected"), Checked: denyT(), Synonyms: []string{"cr123", "lithium aa"}},
	{Key: "button_cell_battery", Label: "Button / coin cell battery", Group: "battery", AnyOf: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("Terminals protected"), Checked: denyT(), Synonyms: []string{"button cell", "coin battery", "cr2032", "watch battery"}},
	{Key: "ni_mh_nicd_battery", Label: "NiMH / NiCd battery", Group: "battery", AnyOf: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("Terminals protected"), Checked: limitT("Terminals protected"), Synonyms: []string{"nimh", "nicd", "eneloop", "rechargeable aa"}},
	{Key: "wet_cell_battery", Label: "Wet-cell (lead-acid) battery", Group: "battery", AnyOf: req(types.ParamWattHours, types.ParamCount), CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"lead acid battery", "car battery", "motorcycle battery"}},
	{Key: "e_bike_scooter_battery", Label: "E-bike / e-scooter battery", Group: "battery", Required: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("160Wh", "Airline approval"), Checked: denyT(), Synonyms: []string{"ebike battery", "e-scooter battery", "36v pack"}},
	{Key: "wheelchair_battery", Label: "Wheelchair / mobility-aid battery", Group: "battery", Required: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("Airline approval"), Checked: limitT("Airline approval", "Terminals protected"), Synonyms: []string{"mobility scooter battery", "wheelchair lithium battery"}},
	{Key: "power_tool_battery", Label: "Power-tool battery", Group: "battery", Required: req(types.ParamWattHours, types.ParamCount), CarryOn: limitT("100Wh", "Terminals protected"), Checked: denyT(), Synonyms: []string{"dewalt battery", "makita battery", "drill battery pack"}},
	{Key: "e_cigarette", Label: "E-cigarette / vape", Group: "battery", CarryOn: limitT("No use on board"), Checked: denyT(), Synonyms: []string{"vape", "juul", "iqos", "e-cig"}},
	{Key: "smart_bag_battery", Label: "Smart bag with battery", Group: "battery", Optional: req(types.ParamWattHours), CarryOn: limitT("Battery removable"), Checked: limitT("Battery removed"), Synonyms: []string{"smart luggage", "motorized suitcase"}},
	{Key: "drone", Label: "Drone", Group: "battery", Optional: req(types.ParamWattHours), CarryOn: limitT("100Wh"), Checked: limitT("Battery removed"), Synonyms: []string{"quadcopter", "dji", "uav"}},
	{Key: "hoverboard", Label: "Hoverboard / e-scooter", Group: "battery", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"segway", "electric scooter", "e-skateboard"}},

	// Sharp objects
	{Key: "knife", Label: "Knife", Group: "sharp", Required: req(types.ParamBladeLengthCM), CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"pocket knife", "chef knife", "hunting knife", "blade"}},
	{Key: "scissors", Label: "Scissors", Group: "sharp", Required: req(types.ParamBladeLengthCM), CarryOn: limitT("6cm blade"), Checked: allowT(), Synonyms: []string{"nail scissors", "craft scissors"}},
	{Key: "multi_tool", Label: "Multi-tool", Group: "sharp", Required: req(types.ParamBladeLengthCM), CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"leatherman", "swiss army knife", "multitool"}},
	{Key: "razor_blade", Label: "Loose razor blade", Group: "sharp", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"box cutter blade", "utility blade", "straight razor"}},
	{Key: "box_cutter", Label: "Box cutter", Group: "sharp", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"utility knife", "stanley knife", "carpet knife"}},
	{Key: "sword", Label: "Sword / large blade", Group: "sharp", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"katana", "machete", "fencing sabre"}},
	{Key: "ice_axe", Label: "Ice axe / crampons", Group: "sharp", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"ice pick", "crampons", "piolet"}},
	{Key: "knitting_needle", Label: "Knitting needles", Group: "sharp", CarryOn: allowT(), Checked: allowT(), Synonyms: []string{"crochet hook", "sewing needles"}},

	// Tools
	{Key: "tool_large", Label: "Large tool (>7in)", Group: "tools", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"wrench", "crowbar", "hammer", "saw"}},
	{Key: "drill", Label: "Power drill", Group: "tools", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"cordless drill", "drill bits", "power saw"}},
	{Key: "screwdriver_small", Label: "Small screwdriver (<7in)", Group: "tools", CarryOn: limitT("Under 18cm"), Checked: allowT(), Synonyms: []string{"precision screwdriver", "eyeglass screwdriver"}},

	// Flammables and chemicals
	{Key: "lighter", Label: "Lighter", Group: "flammable", CarryOn: limitT("1pc", "On person only"), Checked: denyT(), Synonyms: []string{"bic lighter", "zippo", "cigarette lighter"}},
	{Key: "matches_safety", Label: "Safety matches", Group: "flammable", CarryOn: limitT("1pc", "On person only"), Checked: denyT(), Synonyms: []string{"matchbook", "matches"}},
	{Key: "lighter_fluid", Label: "Lighter fluid / torch lighter", Group: "flammable", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"butane refill", "torch lighter", "zippo fluid"}},
	{Key: "camping_gas_canister", Label: "Camping gas canister", Group: "flammable", Required: req(types.ParamCount), CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"butane canister", "propane", "iso-butane", "camp stove fuel"}},
	{Key: "fuel_paste", Label: "Fuel paste / firelighter", Group: "flammable", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"hexamine", "fire starter cubes"}},
	{Key: "paint_flammable", Label: "Flammable paint / thinner", Group: "flammable", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"paint thinner", "turpentine", "varnish"}},
	{Key: "bleach", Label: "Bleach / corrosive cleaner", Group: "chemical", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"drain cleaner", "oven cleaner", "chlorine"}},
	{Key: "pesticide", Label: "Pesticide / toxic chemical", Group: "chemical", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"insecticide", "rat poison", "weed killer"}},
	{Key: "mercury_thermometer", Label: "Mercury thermometer", Group: "chemical", CarryOn: denyT(), Checked: limitT("1pc", "Protective case"), Synonyms: []string{"mercury barometer"}},
	{Key: "fireworks", Label: "Fireworks / pyrotechnics", Group: "explosive", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"firecracker", "party popper", "flare"}},
	{Key: "sparklers", Label: "Sparklers", Group: "explosive", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"sparkler candles"}},

	// Compressed gases and special equipment
	{Key: "dry_ice", Label: "Dry ice", Group: "gas", Required: req(types.ParamWeightKG), CarryOn: limitT("2.5kg", "Vented package"), Checked: limitT("2.5kg", "Airline approval"), Synonyms: []string{"dry ice pack", "co2 ice"}},
	{Key: "co2_cartridge_small", Label: "Small CO2 cartridge", Group: "gas", Required: req(types.ParamCount), CarryOn: limitT("4pc"), Checked: limitT("4pc"), Synonyms: []string{"co2 cylinder", "soda charger", "bike tire inflator"}},
	{Key: "oxygen_cylinder_medical", Label: "Medical oxygen cylinder", Group: "gas", Required: req(types.ParamCount), CarryOn: limitT("Airline approval"), Checked: limitT("Airline approval"), Synonyms: []string{"portable oxygen", "poc cylinder"}},
	{Key: "scuba_tank", Label: "Scuba tank", Group: "gas", Required: req(types.ParamCount), CarryOn: denyT(), Checked: limitT("Empty, valve open"), Synonyms: []string{"dive tank", "air cylinder"}},
	{Key: "portable_stove", Label: "Camping stove (used)", Group: "gas", CarryOn: denyT(), Checked: limitT("Purged of fuel"), Synonyms: []string{"camp stove", "gas burner"}},
	{Key: "curling_iron_gas", Label: "Gas-cartridge curling iron", Group: "gas", CarryOn: limitT("1pc", "Safety cover"), Checked: denyT(), Synonyms: []string{"butane hair iron", "cordless curler"}},
	{Key: "avalanche_backpack", Label: "Avalanche rescue backpack", Group: "gas", CarryOn: limitT("Airline approval"), Checked: limitT("Airline approval"), Synonyms: []string{"airbag backpack"}},
	{Key: "hand_warmer_chemical", Label: "Chemical hand warmer", Group: "gas", CarryOn: allowT(), Checked: allowT(), Synonyms: []string{"hot pack", "heat pad"}},

	// Weapons and sporting goods
	{Key: "weapon_firearm", Label: "Firearm", Group: "weapon", CarryOn: denyT(), Checked: limitT("Airline approval", "Unloaded, locked case"), Synonyms: []string{"pistol", "rifle", "handgun", "shotgun"}},
	{Key: "ammunition", Label: "Ammunition", Group: "weapon", Optional: req(types.ParamWeightKG), CarryOn: denyT(), Checked: limitT("5kg", "Airline approval"), Synonyms: []string{"bullets", "cartridges", "shells"}},
	{Key: "weapon_replica", Label: "Replica / toy weapon", Group: "weapon", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"airsoft gun", "bb gun", "toy pistol", "prop gun"}},
	{Key: "pepper_spray", Label: "Pepper spray", Group: "weapon", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"mace", "self defense spray"}},
	{Key: "stun_gun", Label: "Stun gun / taser", Group: "weapon", CarryOn: denyT(), Checked: denyT(), Synonyms: []string{"taser", "electroshock"}},
	{Key: "martial_arts_equipment", Label: "Martial arts equipment", Group: "weapon", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"nunchaku", "brass knuckles", "kubotan"}},
	{Key: "baseball_bat", Label: "Bat / club", Group: "sports", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"cricket bat", "golf club", "hockey stick"}},
	{Key: "bow_arrow", Label: "Bow and arrows", Group: "sports", CarryOn: denyT(), Checked: allowT(), Synonyms: []string{"archery set", "crossbow"}},

	// Misc
	{Key: "magnet_strong", Label: "Strong magnet", Group: "misc", CarryOn: limitT("Shielded"), Checked: limitT("Shielded"), Synonyms: []string{"neodymium magnet", "magnetron"}},
	{Key: "syringe_medical", Label: "Medical syringe", Group: "medical", CarryOn: limitT("With medication", "Declare at screening"), Checked: allowT(), Synonyms: []string{"epipen", "insulin pen", "needles"}},
	{Key: "thermometer_electronic", Label: "Electronic thermometer", Group: "misc", CarryOn: allowT(), Checked: allowT(), Synonyms: []string{"digital thermometer"}},
}

// DefaultBenignKeys are categories with no transport risk. They resolve to
// allow/allow without the layered merge unless a country rule explicitly
// names them.
var DefaultBenignKeys = []string{
	"benign_general",
	"clothing",
	"shoes",
	"books",
	"documents",
	"toys_soft",
	"snacks_solid",
	"cosmetics_solid",
	"camera_gear",
	"headphones",
	"umbrella",
	"souvenirs",
	"blanket",
}

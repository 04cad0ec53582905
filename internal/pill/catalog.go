// Package pill holds the pill reference catalog and scan identification.
package pill

// Image paths served from the static assets directory.
const (
	whiteTabletImg     = "/attached_assets/generated_images/White_round_tablet_pill_531071e0.png"
	blueCapsuleImg     = "/attached_assets/generated_images/Blue_oval_capsule_90e60c59.png"
	yellowTabletImg    = "/attached_assets/generated_images/Yellow_circular_tablet_b7928714.png"
	pinkPillImg        = "/attached_assets/generated_images/Pink_round_pill_056d7a48.png"
	redWhiteCapsuleImg = "/attached_assets/generated_images/Red_white_capsule_670d2c29.png"
	orangeTabletImg    = "/attached_assets/generated_images/Orange_oblong_tablet_2baf0769.png"
	greenCapsuleImg    = "/attached_assets/generated_images/Green_capsule_pill_c79c173a.png"
	beigeTabletImg     = "/attached_assets/generated_images/Beige_oval_tablet_e36342f1.png"
)

// Pill is a reference catalog entry used to resolve scans.
type Pill struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Image     string `json:"image"`
	CommonFor string `json:"commonFor"`
}

// Catalog is the built-in pill reference set.
var Catalog = []Pill{
	{ID: "1", Name: "Lisinopril", Type: "white-round", Image: whiteTabletImg, CommonFor: "Blood Pressure"},
	{ID: "2", Name: "Metformin", Type: "blue-oval", Image: blueCapsuleImg, CommonFor: "Diabetes"},
	{ID: "3", Name: "Atorvastatin", Type: "yellow-round", Image: yellowTabletImg, CommonFor: "Cholesterol"},
	{ID: "4", Name: "Levothyroxine", Type: "pink-round", Image: pinkPillImg, CommonFor: "Thyroid"},
	{ID: "5", Name: "Omeprazole", Type: "red-white-capsule", Image: redWhiteCapsuleImg, CommonFor: "Acid Reflux"},
	{ID: "6", Name: "Amlodipine", Type: "orange-oblong", Image: orangeTabletImg, CommonFor: "Blood Pressure"},
	{ID: "7", Name: "Gabapentin", Type: "green-capsule", Image: greenCapsuleImg, CommonFor: "Nerve Pain"},
	{ID: "8", Name: "Aspirin", Type: "beige-oval", Image: beigeTabletImg, CommonFor: "Heart Health"},
}

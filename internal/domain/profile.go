package domain

import "time"

// UserProfile is a student's profile. CreatedAt is set once on first save;
// LastUpdated moves forward on every mutation.
type UserProfile struct {
	ID             string         `json:"id,omitempty"`
	Name           string         `json:"name,omitempty"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	Email          string         `json:"email,omitempty"`
	Year           string         `json:"year,omitempty"`
	Age            int            `json:"age,omitempty"`
	Gender         string         `json:"gender,omitempty"`
	Major          string         `json:"major,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Picture        string         `json:"picture,omitempty"`
	Provider       string         `json:"provider,omitempty"`
	Preferences    Preferences    `json:"preferences"`
	WorkoutProfile WorkoutProfile `json:"workout_profile"`
	CreatedAt      *time.Time     `json:"created_at,omitempty"`
	LastUpdated    *time.Time     `json:"last_updated,omitempty"`
}

// Preferences holds the user's UI and notification settings.
type Preferences struct {
	Notifications bool `json:"notifications"`
	DarkMode      bool `json:"dark_mode"`
}

// WorkoutProfile describes what a student looks for in a workout partner.
type WorkoutProfile struct {
	Goals         string `json:"goals,omitempty"`
	Experience    string `json:"experience,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Location      string `json:"location,omitempty"`
	Bio           string `json:"bio,omitempty"`
}

// DefaultProfile is the shape returned when no profile has been stored yet,
// or when the stored document cannot be read.
func DefaultProfile() UserProfile {
	return UserProfile{
		Preferences: Preferences{Notifications: true},
	}
}

// ProfileUpdate is a partial update. Nil fields are left untouched, so the
// result of applying an update is the union of the previous state and the
// fields set here.
type ProfileUpdate struct {
	Name           *string               `json:"name,omitempty"`
	FirstName      *string               `json:"first_name,omitempty"`
	LastName       *string               `json:"last_name,omitempty"`
	Email          *string               `json:"email,omitempty"`
	Year           *string               `json:"year,omitempty"`
	Age            *int                  `json:"age,omitempty"`
	Gender         *string               `json:"gender,omitempty"`
	Major          *string               `json:"major,omitempty"`
	Phone          *string               `json:"phone,omitempty"`
	Preferences    *PreferencesUpdate    `json:"preferences,omitempty"`
	WorkoutProfile *WorkoutProfileUpdate `json:"workout_profile,omitempty"`
}

// PreferencesUpdate is the partial form of Preferences.
type PreferencesUpdate struct {
	Notifications *bool `json:"notifications,omitempty"`
	DarkMode      *bool `json:"dark_mode,omitempty"`
}

// WorkoutProfileUpdate is the partial form of WorkoutProfile.
type WorkoutProfileUpdate struct {
	Goals         *string `json:"goals,omitempty"`
	Experience    *string `json:"experience,omitempty"`
	PreferredTime *string `json:"preferred_time,omitempty"`
	Location      *string `json:"location,omitempty"`
	Bio           *string `json:"bio,omitempty"`
}

// Apply returns p with every non-nil field of u copied over.
func (u ProfileUpdate) Apply(p UserProfile) UserProfile {
	setString(&p.Name, u.Name)
	setString(&p.FirstName, u.FirstName)
	setString(&p.LastName, u.LastName)
	setString(&p.Email, u.Email)
	setString(&p.Year, u.Year)
	setString(&p.Gender, u.Gender)
	setString(&p.Major, u.Major)
	setString(&p.Phone, u.Phone)
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Preferences != nil {
		if u.Preferences.Notifications != nil {
			p.Preferences.Notifications = *u.Preferences.Notifications
		}
		if u.Preferences.DarkMode != nil {
			p.Preferences.DarkMode = *u.Preferences.DarkMode
		}
	}
	if w := u.WorkoutProfile; w != nil {
		setString(&p.WorkoutProfile.Goals, w.Goals)
		setString(&p.WorkoutProfile.Experience, w.Experience)
		setString(&p.WorkoutProfile.PreferredTime, w.PreferredTime)
		setString(&p.WorkoutProfile.Location, w.Location)
		setString(&p.WorkoutProfile.Bio, w.Bio)
	}
	return p
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

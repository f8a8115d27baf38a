package chat

// Gemini Model IDs
//
// | Model Name                  | API Model ID               | Use Case                      |
// |-----------------------------|----------------------------|-------------------------------|
// | Gemini 2.5 Flash            | gemini-2.5-flash           | Menu text extraction          |
// | Gemini 2.5 Pro              | gemini-2.5-pro             | Harder menus, slower          |
// | Gemini 2.5 Flash Image      | gemini-2.5-flash-image     | Dish photo generation + edit  |
// | Gemini 3 Pro Image          | gemini-3-pro-image-preview | Higher fidelity image output  |
const (
	ModelGemini25Flash      = "gemini-2.5-flash"
	ModelGemini25Pro        = "gemini-2.5-pro"
	ModelGemini25FlashImage = "gemini-2.5-flash-image"
	ModelGemini3ProImage    = "gemini-3-pro-image-preview"
)

// Defaults used when no model override is configured.
const (
	DefaultTextModel  = ModelGemini25Flash
	DefaultImageModel = ModelGemini25FlashImage
)

// ValidationModel is the model used for the one-token API key check.
const ValidationModel = ModelGemini25Flash

func orDefault(model, def string) string {
	if model == "" {
		return def
	}
	return model
}

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/greenleaf/plant-store-api/internal/dto"
	"github.com/greenleaf/plant-store-api/internal/model"
)

const systemPromptDescription = "Tu es un expert en horticulture spécialisé dans le climat méditerranéen tunisien. Réponds toujours en français de manière professionnelle et concise."
const systemPromptJSON = "Tu es un expert en horticulture spécialisé dans le climat tunisien. Réponds UNIQUEMENT en JSON valide, sans texte supplémentaire."
const systemPromptPrice = "Tu es un expert du marché des plantes en Tunisie. Réponds UNIQUEMENT en JSON valide."

// Generator drafts plant copy through the AI client. Every generation has a
// static fallback so admin tooling keeps working when the upstream call fails
// or no API key is configured.
type Generator struct {
	client *Client
	queue  *Queue
	log    *slog.Logger
}

func NewGenerator(client *Client, queue *Queue, log *slog.Logger) *Generator {
	return &Generator{client: client, queue: queue, log: log}
}

// GenerateInfo produces a description, a price recommendation, and a care
// guide for the given plant. The three calls go through the sequential queue;
// only context cancellation is returned as an error.
func (g *Generator) GenerateInfo(ctx context.Context, name string, category model.Category, size model.Size) (*dto.GenerateInfoResponse, error) {
	resp := &dto.GenerateInfoResponse{}

	err := g.queue.Do(ctx, func() {
		resp.Description = g.generateDescription(ctx, name, category, size)
	})
	if err != nil {
		return nil, err
	}

	err = g.queue.Do(ctx, func() {
		resp.PriceRecommendation = g.recommendPrice(ctx, name, category, size)
	})
	if err != nil {
		return nil, err
	}

	err = g.queue.Do(ctx, func() {
		resp.CareGuide = g.generateCareGuide(ctx, name, category, size)
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (g *Generator) generateDescription(ctx context.Context, name string, category model.Category, size model.Size) string {
	prompt := fmt.Sprintf(`Génère une description professionnelle pour cette plante (maximum 600 caractères):

Nom: %s
Catégorie: %s
Taille: %s

Inclus: introduction courte, caractéristiques, besoins (lumière/arrosage/température adaptés au climat tunisien), conseils d'entretien, et bienfaits. Texte fluide sans formatage markdown.`, name, category, size)

	text, err := g.client.Complete(ctx, systemPromptDescription, prompt, 300)
	if err != nil {
		g.log.Warn("generate description failed, using fallback", "plant", name, "error", err)
		return fmt.Sprintf("%s est une plante de %s de taille %s. Cette plante s'adapte bien au climat méditerranéen tunisien. Elle nécessite un arrosage régulier et une exposition appropriée à la lumière. Idéale pour embellir votre espace vert.", name, category, size)
	}

	text = strings.NewReplacer("**", "", "*", "", "###", "", "##", "", "#", "").Replace(text)
	text = strings.TrimSpace(text)
	if len(text) > 800 {
		text = text[:800]
	}
	return text
}

func (g *Generator) recommendPrice(ctx context.Context, name string, category model.Category, size model.Size) dto.PriceRecommendation {
	prompt := fmt.Sprintf(`Pour %s (catégorie: %s, taille: %s), recommande un prix en dinars tunisiens (TND).

Réponds UNIQUEMENT avec ce JSON exact:
{"recommendedPrice": 45.5, "minPrice": 35.0, "maxPrice": 55.0, "explanation": "courte explication"}

Utilise des nombres décimaux.`, name, category, size)

	text, err := g.client.Complete(ctx, systemPromptPrice, prompt, 200)
	if err != nil {
		g.log.Warn("recommend price failed, using fallback", "plant", name, "error", err)
		return fallbackPrice(size)
	}

	var parsed struct {
		RecommendedPrice float64 `json:"recommendedPrice"`
		MinPrice         float64 `json:"minPrice"`
		MaxPrice         float64 `json:"maxPrice"`
		Explanation      string  `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(extractJSON(text)), &parsed); err != nil || parsed.RecommendedPrice <= 0 {
		g.log.Warn("unparseable price recommendation, using fallback", "plant", name)
		return fallbackPrice(size)
	}

	explanation := parsed.Explanation
	if explanation == "" {
		explanation = "Prix basé sur le marché tunisien"
	}
	return dto.PriceRecommendation{
		RecommendedPrice: decimal.NewFromFloat(parsed.RecommendedPrice),
		MinPrice:         decimal.NewFromFloat(parsed.MinPrice),
		MaxPrice:         decimal.NewFromFloat(parsed.MaxPrice),
		Explanation:      explanation,
		Currency:         "TND",
	}
}

func (g *Generator) generateCareGuide(ctx context.Context, name string, category model.Category, size model.Size) model.CareGuide {
	prompt := fmt.Sprintf(`Pour %s (catégorie: %s, taille: %s), donne les instructions de soin au format JSON exact:

{"watering":{"frequency":"fréquence","amount":"quantité"},"sunlight":{"exposure":"type","duration":"durée"},"temperature":{"ideal":"idéale","min":"min","max":"max"},"soil":"type de sol","fertilizer":"recommandations","tips":["conseil 1","conseil 2","conseil 3"]}

Adapte au climat méditerranéen tunisien.`, name, category, size)

	text, err := g.client.Complete(ctx, systemPromptJSON, prompt, 400)
	if err != nil {
		g.log.Warn("generate care guide failed, using fallback", "plant", name, "error", err)
		return fallbackCareGuide()
	}

	var guide model.CareGuide
	if err := json.Unmarshal([]byte(extractJSON(text)), &guide); err != nil || guide.Soil == "" {
		g.log.Warn("unparseable care guide, using fallback", "plant", name)
		return fallbackCareGuide()
	}
	return guide
}

// extractJSON pulls the JSON object out of a reply that may wrap it in code
// fences or prose.
func extractJSON(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}

func fallbackPrice(size model.Size) dto.PriceRecommendation {
	prices := map[model.Size][3]float64{
		model.SizeSmall:  {15, 20, 25},
		model.SizeMedium: {25, 35, 45},
		model.SizeLarge:  {50, 70, 90},
	}
	p, ok := prices[size]
	if !ok {
		p = prices[model.SizeMedium]
	}
	return dto.PriceRecommendation{
		MinPrice:         decimal.NewFromFloat(p[0]),
		RecommendedPrice: decimal.NewFromFloat(p[1]),
		MaxPrice:         decimal.NewFromFloat(p[2]),
		Explanation:      "Prix estimé basé sur la taille (marché tunisien)",
		Currency:         "TND",
	}
}

func fallbackCareGuide() model.CareGuide {
	return model.CareGuide{
		Watering:    model.WateringGuide{Frequency: "2-3 fois par semaine", Amount: "Modéré"},
		Sunlight:    model.SunlightGuide{Exposure: "Plein soleil à mi-ombre", Duration: "6-8 heures"},
		Temperature: model.TemperatureGuide{Ideal: "18-24°C", Min: "10°C", Max: "35°C"},
		Soil:        "Sol bien drainé et riche",
		Fertilizer:  "Engrais équilibré mensuel",
		Tips:        []string{"Arrosage régulier sans excès", "Protection du soleil intense d'été", "Taille légère au printemps"},
	}
}
